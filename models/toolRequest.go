package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ToolRequest struct {
	ID              int                `gorm:"primary_key" json:"id"`
	TechnicianEmail string             `gorm:"size:100;not null;index" json:"technician_email"`
	Lines           []*ToolRequestLine `gorm:"foreignKey:ToolRequestId" json:"tools"`
	Status          ToolRequestStatus  `gorm:"size:20;not null;default:Pending;index" json:"status"`
	RequestDate     time.Time          `gorm:"autoCreateTime" json:"request_date"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// ToolRequestLine tracks one tool's requested, approved and cumulative returned quantities.
type ToolRequestLine struct {
	ID                int              `gorm:"primary_key" json:"id"`
	ToolRequestId     int              `gorm:"not null;index" json:"tool_request_id"`
	ToolId            int              `gorm:"not null;index" json:"tool_id"`
	QuantityRequested int              `gorm:"not null" json:"quantity_requested"`
	QuantityApproved  int              `gorm:"not null;default:0" json:"quantity_approved"`
	QuantityReturned  int              `gorm:"not null;default:0" json:"quantity_returned"`
	ReturnStatus      ToolReturnStatus `gorm:"size:30;not null;default:'Not Returned'" json:"return_status"`
}

type ToolQuantityInput struct {
	ToolId   int `json:"tool_id" binding:"required" validate:"required,gt=0"`
	Quantity int `json:"quantity" validate:"gte=0"`
}

type NewToolRequest struct {
	TechnicianEmail string              `json:"email" binding:"required" validate:"required,email"`
	Tools           []ToolQuantityInput `json:"tools" binding:"required" validate:"required,min=1,dive"`
}

const toolRequestEntity = "tool_request"

// lineReturnStatus compares cumulative returns to the approved quantity.
func lineReturnStatus(returned int, approved int) ToolReturnStatus {
	if returned >= approved {
		return ToolReturnStatusFullyReturned
	}
	return ToolReturnStatusPartiallyReturned
}

func allLinesReturned(lines []*ToolRequestLine) bool {
	for _, line := range lines {
		if line.QuantityReturned < line.QuantityApproved {
			return false
		}
	}
	return true
}

func lineByTool(lines []*ToolRequestLine, toolId int) *ToolRequestLine {
	for _, line := range lines {
		if line.ToolId == toolId {
			return line
		}
	}
	return nil
}

// sumByTool folds repeated tool ids and rejects negative quantities.
func sumByTool(inputs []ToolQuantityInput) (map[int]int, []int, error) {
	totals := map[int]int{}
	var order []int
	for _, in := range inputs {
		if in.Quantity < 0 {
			return nil, nil, utils.InvalidInput("quantity for tool %d cannot be negative", in.ToolId)
		}
		if _, ok := totals[in.ToolId]; !ok {
			order = append(order, in.ToolId)
		}
		totals[in.ToolId] += in.Quantity
	}
	return totals, order, nil
}

// applyApprovals sets approved quantities on the matching lines. Every approval must satisfy
// 0 <= approved <= requested.
func applyApprovals(lines []*ToolRequestLine, approvals []ToolQuantityInput) error {
	totals, order, err := sumByTool(approvals)
	if err != nil {
		return err
	}
	for _, toolId := range order {
		line := lineByTool(lines, toolId)
		if line == nil {
			return utils.InvalidInput("tool %d is not part of this request", toolId)
		}
		if totals[toolId] > line.QuantityRequested {
			return utils.InvalidInput("approved quantity %d for tool %d exceeds requested %d", totals[toolId], toolId, line.QuantityRequested)
		}
		line.QuantityApproved = totals[toolId]
	}
	return nil
}

// applyReturns adds returned quantities and recomputes each touched line's status.
// It reports whether every line of the request is now fully returned.
func applyReturns(lines []*ToolRequestLine, returns []ToolQuantityInput) (bool, error) {
	totals, order, err := sumByTool(returns)
	if err != nil {
		return false, err
	}
	for _, toolId := range order {
		line := lineByTool(lines, toolId)
		if line == nil {
			return false, utils.InvalidInput("tool %d is not part of this request", toolId)
		}
		if line.QuantityReturned+totals[toolId] > line.QuantityApproved {
			return false, utils.InvalidInput("cannot return %d of tool %d: %d approved, %d already returned",
				totals[toolId], toolId, line.QuantityApproved, line.QuantityReturned)
		}
		line.QuantityReturned += totals[toolId]
		line.ReturnStatus = lineReturnStatus(line.QuantityReturned, line.QuantityApproved)
	}
	return allLinesReturned(lines), nil
}

func (r *ToolRequest) transition(ctx context.Context, tx *gorm.DB, to ToolRequestStatus) error {
	from := r.Status
	if err := requireTransition(toolRequestEntity, r.ID, from, to, from.CanTransitionTo(to)); err != nil {
		return err
	}
	if err := tx.Model(r).Update("status", to).Error; err != nil {
		return err
	}
	r.Status = to
	return recordEvent(ctx, tx, EventToolRequestTransitioned, toolRequestEntity, r.ID, string(from), string(to), r)
}

func saveLines(tx *gorm.DB, lines []*ToolRequestLine) error {
	for _, line := range lines {
		if err := tx.Model(line).Updates(map[string]interface{}{
			"QuantityApproved": line.QuantityApproved,
			"QuantityReturned": line.QuantityReturned,
			"ReturnStatus":     line.ReturnStatus,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// RequestTools records a technician's request. The technician must be active and every tool must exist.
func RequestTools(ctx context.Context, input *NewToolRequest) (*ToolRequest, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	technician, err := FindActiveEmployeeByRoleAndEmail(ctx, EmployeeRoleTechnician, input.TechnicianEmail)
	if err != nil {
		return nil, err
	}
	totals, order, err := sumByTool(input.Tools)
	if err != nil {
		return nil, err
	}

	request := ToolRequest{
		TechnicianEmail: technician.Email,
		Status:          ToolRequestStatusPending,
	}
	err = runTransition(ctx, "RequestTools", toolRequestEntity, 0, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Tool{}).Where("id IN ?", order).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(order) {
			return utils.NotFound("one or more tools not found")
		}
		for _, toolId := range order {
			if totals[toolId] <= 0 {
				return utils.InvalidInput("requested quantity for tool %d must be greater than zero", toolId)
			}
			request.Lines = append(request.Lines, &ToolRequestLine{
				ToolId:            toolId,
				QuantityRequested: totals[toolId],
				ReturnStatus:      ToolReturnStatusNotReturned,
			})
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		return recordEvent(ctx, tx, EventToolRequestTransitioned, toolRequestEntity, request.ID, "", string(request.Status), request)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ApproveToolRequest debits tool stock for every approved line in one transaction.
// If any tool is short, nothing is debited and all short tools are reported together.
func ApproveToolRequest(ctx context.Context, id int, approvals []ToolQuantityInput) (*ToolRequest, error) {
	var request *ToolRequest
	err := runTransition(ctx, "ApproveToolRequest", toolRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[ToolRequest](tx, "tool request", id, "Lines"); err != nil {
			return err
		}
		if err := requireTransition(toolRequestEntity, id, request.Status, ToolRequestStatusApproved,
			request.Status.CanTransitionTo(ToolRequestStatusApproved)); err != nil {
			return err
		}
		if err := applyApprovals(request.Lines, approvals); err != nil {
			return err
		}

		ledger := Ledger(tx)
		var short []string
		for _, line := range request.Lines {
			if line.QuantityApproved == 0 {
				continue
			}
			_, err := ledger.Debit(StockMovement{
				Class:         StockClassTool,
				ItemId:        line.ToolId,
				Quantity:      decimal.NewFromInt(int64(line.QuantityApproved)),
				Type:          InventoryLogTypeRelease,
				ReferenceType: toolRequestEntity,
				ReferenceId:   request.ID,
			})
			if err != nil {
				var wfErr *utils.WorkflowError
				if errors.As(err, &wfErr) && errors.Is(err, utils.ErrInsufficientStock) {
					short = append(short, wfErr.Message)
					continue
				}
				return err
			}
		}
		if len(short) > 0 {
			sort.Strings(short)
			return utils.InsufficientStock("%s", strings.Join(short, "; "))
		}

		if err := saveLines(tx, request.Lines); err != nil {
			return err
		}
		return request.transition(ctx, tx, ToolRequestStatusApproved)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func RejectToolRequest(ctx context.Context, id int) (*ToolRequest, error) {
	var request *ToolRequest
	err := runTransition(ctx, "RejectToolRequest", toolRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[ToolRequest](tx, "tool request", id, "Lines"); err != nil {
			return err
		}
		return request.transition(ctx, tx, ToolRequestStatusRejected)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ReturnTools credits returned tools back to stock. The request becomes Returned once every line is fully returned.
func ReturnTools(ctx context.Context, id int, technicianEmail string, returns []ToolQuantityInput) (*ToolRequest, error) {
	if len(returns) == 0 {
		return nil, utils.InvalidInput("no tools to return")
	}
	var request *ToolRequest
	err := runTransition(ctx, "ReturnTools", toolRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[ToolRequest](tx, "tool request", id, "Lines"); err != nil {
			return err
		}
		if !strings.EqualFold(request.TechnicianEmail, strings.TrimSpace(technicianEmail)) {
			return utils.Unauthorized("tool request %d does not belong to %s", id, technicianEmail)
		}
		if request.Status != ToolRequestStatusApproved {
			return utils.InvalidState("tool request %d is %s, only approved requests can be returned", id, request.Status)
		}

		before := make(map[int]int, len(request.Lines))
		for _, line := range request.Lines {
			before[line.ID] = line.QuantityReturned
		}
		allReturned, err := applyReturns(request.Lines, returns)
		if err != nil {
			return err
		}

		ledger := Ledger(tx)
		for _, line := range request.Lines {
			delta := line.QuantityReturned - before[line.ID]
			if delta == 0 {
				continue
			}
			if _, err := ledger.Credit(StockMovement{
				Class:         StockClassTool,
				ItemId:        line.ToolId,
				Quantity:      decimal.NewFromInt(int64(delta)),
				Type:          InventoryLogTypeAdd,
				ReferenceType: toolRequestEntity,
				ReferenceId:   request.ID,
			}); err != nil {
				return err
			}
		}
		if err := saveLines(tx, request.Lines); err != nil {
			return err
		}
		if allReturned {
			return request.transition(ctx, tx, ToolRequestStatusReturned)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ToolRequestLineView is a request line joined with its tool's name and unit.
type ToolRequestLineView struct {
	ToolRequestLine
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type ToolRequestView struct {
	ID              int                    `json:"id"`
	TechnicianEmail string                 `json:"technician_email"`
	Status          ToolRequestStatus      `json:"status"`
	RequestDate     time.Time              `json:"request_date"`
	Tools           []*ToolRequestLineView `json:"tools"`
}

type ToolRequestFilter struct {
	TechnicianEmail *string
	Status          *ToolRequestStatus
}

// ListToolRequests returns requests with tool details resolved through lookup.
func ListToolRequests(ctx context.Context, filter ToolRequestFilter, lookup func(ctx context.Context, ids []int) (map[int]*Tool, error)) ([]*ToolRequestView, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Lines")
	if filter.TechnicianEmail != nil && *filter.TechnicianEmail != "" {
		dbCtx = dbCtx.Where("technician_email = ?", strings.ToLower(strings.TrimSpace(*filter.TechnicianEmail)))
	}
	if filter.Status != nil && *filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	var requests []*ToolRequest
	if err := dbCtx.Order("request_date DESC").Find(&requests).Error; err != nil {
		return nil, err
	}

	var toolIds []int
	for _, r := range requests {
		for _, line := range r.Lines {
			toolIds = append(toolIds, line.ToolId)
		}
	}
	tools := map[int]*Tool{}
	if len(toolIds) > 0 {
		var err error
		if tools, err = lookup(ctx, utils.UniqueSlice(toolIds)); err != nil {
			return nil, err
		}
	}

	views := make([]*ToolRequestView, 0, len(requests))
	for _, r := range requests {
		view := &ToolRequestView{
			ID:              r.ID,
			TechnicianEmail: r.TechnicianEmail,
			Status:          r.Status,
			RequestDate:     r.RequestDate,
		}
		for _, line := range r.Lines {
			lv := &ToolRequestLineView{ToolRequestLine: *line}
			if tool, ok := tools[line.ToolId]; ok && tool != nil {
				lv.Name = tool.Name
				lv.Unit = tool.Unit
			} else {
				lv.Name = fmt.Sprintf("tool #%d", line.ToolId)
			}
			view.Tools = append(view.Tools, lv)
		}
		views = append(views, view)
	}
	return views, nil
}
