package models

import (
	"context"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RawMaterialRequest struct {
	ID            int                      `gorm:"primary_key" json:"id"`
	MaterialName  string                   `gorm:"size:150;not null" json:"material_name"`
	Quantity      decimal.Decimal          `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Unit          string                   `gorm:"size:30;not null" json:"unit"`
	Note          string                   `gorm:"type:text" json:"note"`
	Supplier      string                   `gorm:"size:100;not null;index" json:"supplier"`
	Status        RawMaterialRequestStatus `gorm:"size:30;not null;default:pending;index" json:"status"`
	UnitCost      *decimal.Decimal         `gorm:"type:decimal(20,2)" json:"unit_cost"`
	TotalCost     *decimal.Decimal         `gorm:"type:decimal(20,2)" json:"total_cost"`
	AmountPaid    *decimal.Decimal         `gorm:"type:decimal(20,2)" json:"amount_paid"`
	PaymentStatus SupplierPaymentStatus    `gorm:"size:20;not null;default:unpaid;index" json:"payment_status"`
	PaymentCode   *string                  `gorm:"size:20" json:"payment_code"`
	PaymentDate   *time.Time               `json:"payment_date"`
	CreatedAt     time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRawMaterialRequest struct {
	MaterialName string          `json:"material_name" binding:"required" validate:"required,max=150"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Unit         string          `json:"unit" binding:"required" validate:"required,max=30"`
	Note         string          `json:"note"`
	Supplier     string          `json:"supplier" binding:"required" validate:"required,max=100"`
}

type RawMaterialResponseInput struct {
	Decision string           `json:"decision" binding:"required"`
	UnitCost *decimal.Decimal `json:"unit_cost"`
}

// SupplyReceipt is what the finance team hands to a supplier after payment.
type SupplyReceipt struct {
	RequestId    int             `json:"request_id"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Supplier     string          `json:"supplier"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	PaymentCode  string          `json:"payment_code"`
	PaymentDate  time.Time       `json:"payment_date"`
}

const rawMaterialRequestEntity = "raw_material_request"

func (r *RawMaterialRequest) transition(ctx context.Context, tx *gorm.DB, to RawMaterialRequestStatus, updates map[string]interface{}) error {
	from := r.Status
	if err := requireTransition(rawMaterialRequestEntity, r.ID, from, to, from.CanTransitionTo(to)); err != nil {
		return err
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["Status"] = to
	if err := tx.Model(r).Updates(updates).Error; err != nil {
		return err
	}
	r.Status = to
	return recordEvent(ctx, tx, EventRawMaterialRequestTransitioned, rawMaterialRequestEntity, r.ID, string(from), string(to), r)
}

func CreateRawMaterialRequest(ctx context.Context, input *NewRawMaterialRequest) (*RawMaterialRequest, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if !input.Quantity.IsPositive() {
		return nil, utils.InvalidInput("quantity must be greater than zero")
	}

	request := RawMaterialRequest{
		MaterialName:  strings.TrimSpace(input.MaterialName),
		Quantity:      input.Quantity,
		Unit:          strings.TrimSpace(input.Unit),
		Note:          input.Note,
		Supplier:      strings.TrimSpace(input.Supplier),
		Status:        RawMaterialRequestStatusPending,
		PaymentStatus: SupplierPaymentStatusUnpaid,
	}
	err := runTransition(ctx, "CreateRawMaterialRequest", rawMaterialRequestEntity, 0, func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		return recordEvent(ctx, tx, EventRawMaterialRequestTransitioned, rawMaterialRequestEntity, request.ID, "", string(request.Status), request)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// RespondToRawMaterialRequest is the supplier's approve/reject decision.
// Approval fixes the unit cost and TotalCost = UnitCost x Quantity.
func RespondToRawMaterialRequest(ctx context.Context, id int, input *RawMaterialResponseInput) (*RawMaterialRequest, error) {
	decision, err := ParseDecision(input.Decision)
	if err != nil {
		return nil, utils.InvalidInput("%s", err.Error())
	}
	if decision == DecisionApprove {
		if input.UnitCost == nil {
			return nil, utils.InvalidInput("unit cost is required to approve")
		}
		if input.UnitCost.IsNegative() {
			return nil, utils.InvalidInput("unit cost cannot be negative")
		}
	}

	var request *RawMaterialRequest
	err = runTransition(ctx, "RespondToRawMaterialRequest", rawMaterialRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[RawMaterialRequest](tx, "raw material request", id); err != nil {
			return err
		}
		if decision == DecisionReject {
			return request.transition(ctx, tx, RawMaterialRequestStatusRejected, nil)
		}
		unitCost := *input.UnitCost
		totalCost := unitCost.Mul(request.Quantity)
		request.UnitCost = &unitCost
		request.TotalCost = &totalCost
		return request.transition(ctx, tx, RawMaterialRequestStatusApproved, map[string]interface{}{
			"UnitCost":  unitCost,
			"TotalCost": totalCost,
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// SupplyRawMaterialRequest marks an approved request as delivered by the supplier.
func SupplyRawMaterialRequest(ctx context.Context, id int) (*RawMaterialRequest, error) {
	var request *RawMaterialRequest
	err := runTransition(ctx, "SupplyRawMaterialRequest", rawMaterialRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[RawMaterialRequest](tx, "raw material request", id); err != nil {
			return err
		}
		return request.transition(ctx, tx, RawMaterialRequestStatusSupplied, nil)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// InspectRawMaterialRequest is the inventory decision on supplied goods.
// Accepting credits raw material stock and leaves the request unpaid.
func InspectRawMaterialRequest(ctx context.Context, id int, rawDecision string) (*RawMaterialRequest, error) {
	decision, err := ParseDecision(rawDecision)
	if err != nil {
		return nil, utils.InvalidInput("%s", err.Error())
	}

	var request *RawMaterialRequest
	err = runTransition(ctx, "InspectRawMaterialRequest", rawMaterialRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[RawMaterialRequest](tx, "raw material request", id); err != nil {
			return err
		}
		if decision == DecisionReject {
			return request.transition(ctx, tx, RawMaterialRequestStatusRejectedByInventory, nil)
		}
		request.PaymentStatus = SupplierPaymentStatusUnpaid
		if err := request.transition(ctx, tx, RawMaterialRequestStatusAccepted, map[string]interface{}{
			"PaymentStatus": SupplierPaymentStatusUnpaid,
		}); err != nil {
			return err
		}
		_, err = Ledger(tx).Credit(StockMovement{
			Class:         StockClassRawMaterial,
			Name:          request.MaterialName,
			Unit:          request.Unit,
			Quantity:      request.Quantity,
			Type:          InventoryLogTypeAdd,
			ReferenceType: rawMaterialRequestEntity,
			ReferenceId:   request.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// PayRawMaterialRequest settles an accepted, unpaid request. AmountPaid is always the approved TotalCost.
func PayRawMaterialRequest(ctx context.Context, id int, code string) (*RawMaterialRequest, error) {
	code = normalizePaymentCode(code)
	if err := ValidateSupplierPaymentCode(code); err != nil {
		return nil, err
	}

	var request *RawMaterialRequest
	err := runTransition(ctx, "PayRawMaterialRequest", rawMaterialRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[RawMaterialRequest](tx, "raw material request", id); err != nil {
			return err
		}
		if request.Status != RawMaterialRequestStatusAccepted {
			return utils.InvalidState("raw material request %d is %s, only accepted requests can be paid", id, request.Status)
		}
		if request.PaymentStatus != SupplierPaymentStatusUnpaid {
			return utils.InvalidState("raw material request %d is already %s", id, request.PaymentStatus)
		}
		amount := utils.DereferencePtr(request.TotalCost)
		now := time.Now().UTC()
		if err := tx.Model(request).Updates(map[string]interface{}{
			"PaymentStatus": SupplierPaymentStatusPaid,
			"PaymentCode":   code,
			"AmountPaid":    amount,
			"PaymentDate":   now,
		}).Error; err != nil {
			return err
		}
		request.PaymentStatus = SupplierPaymentStatusPaid
		request.PaymentCode = &code
		request.AmountPaid = &amount
		request.PaymentDate = &now
		return recordEvent(ctx, tx, EventRawMaterialRequestPaid, rawMaterialRequestEntity, request.ID,
			string(SupplierPaymentStatusUnpaid), string(SupplierPaymentStatusPaid), request)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func GetRawMaterialRequest(ctx context.Context, id int) (*RawMaterialRequest, error) {
	return utils.FetchModel[RawMaterialRequest](ctx, "raw material request", id)
}

type RawMaterialRequestFilter struct {
	Status        *RawMaterialRequestStatus
	PaymentStatus *SupplierPaymentStatus
	Supplier      *string
}

func ListRawMaterialRequests(ctx context.Context, filter RawMaterialRequestFilter) ([]*RawMaterialRequest, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if filter.Status != nil {
		dbCtx = dbCtx.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		dbCtx = dbCtx.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.Supplier != nil && *filter.Supplier != "" {
		dbCtx = dbCtx.Where("supplier = ?", *filter.Supplier)
	}
	var results []*RawMaterialRequest
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetSupplyReceipt returns receipt data for a paid request.
func GetSupplyReceipt(ctx context.Context, id int) (*SupplyReceipt, error) {
	request, err := GetRawMaterialRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.PaymentStatus != SupplierPaymentStatusPaid {
		return nil, utils.InvalidState("raw material request %d has not been paid", id)
	}
	return &SupplyReceipt{
		RequestId:    request.ID,
		MaterialName: request.MaterialName,
		Quantity:     request.Quantity,
		Unit:         request.Unit,
		Supplier:     request.Supplier,
		UnitCost:     utils.DereferencePtr(request.UnitCost),
		TotalCost:    utils.DereferencePtr(request.TotalCost),
		AmountPaid:   utils.DereferencePtr(request.AmountPaid),
		PaymentCode:  utils.DereferencePtr(request.PaymentCode),
		PaymentDate:  utils.DereferencePtr(request.PaymentDate),
	}, nil
}
