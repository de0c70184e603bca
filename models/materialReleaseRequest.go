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

// MaterialReleaseRequest asks inventory to hand raw material over to production.
// Stock is only checked at release and is debited at approval.
type MaterialReleaseRequest struct {
	ID           int                   `gorm:"primary_key" json:"id"`
	MaterialName string                `gorm:"size:150;not null" json:"material_name"`
	Quantity     decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Status       MaterialReleaseStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	ProcessedAt  *time.Time            `json:"processed_at"`
	RequestedAt  time.Time             `gorm:"autoCreateTime" json:"requested_at"`
	UpdatedAt    time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMaterialReleaseRequest struct {
	MaterialName string          `json:"material_name" binding:"required" validate:"required,max=150"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

const materialReleaseEntity = "material_release_request"

func (r *MaterialReleaseRequest) transition(ctx context.Context, tx *gorm.DB, to MaterialReleaseStatus) error {
	from := r.Status
	if err := requireTransition(materialReleaseEntity, r.ID, from, to, from.CanTransitionTo(to)); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := tx.Model(r).Updates(map[string]interface{}{
		"Status":      to,
		"ProcessedAt": now,
	}).Error; err != nil {
		return err
	}
	r.Status = to
	r.ProcessedAt = &now
	return recordEvent(ctx, tx, EventMaterialReleaseTransitioned, materialReleaseEntity, r.ID, string(from), string(to), r)
}

func (r *MaterialReleaseRequest) movement() StockMovement {
	return StockMovement{
		Class:         StockClassRawMaterial,
		Name:          r.MaterialName,
		Quantity:      r.Quantity,
		Type:          InventoryLogTypeRelease,
		ReferenceType: materialReleaseEntity,
		ReferenceId:   r.ID,
	}
}

func CreateMaterialReleaseRequest(ctx context.Context, input *NewMaterialReleaseRequest) (*MaterialReleaseRequest, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if input.Quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, utils.InvalidInput("quantity must be at least 1")
	}
	request := MaterialReleaseRequest{
		MaterialName: strings.TrimSpace(input.MaterialName),
		Quantity:     input.Quantity,
		Status:       MaterialReleaseStatusPending,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ReleaseMaterial checks that enough matching raw material is on hand. Nothing is deducted yet.
func ReleaseMaterial(ctx context.Context, id int) (*MaterialReleaseRequest, error) {
	var request *MaterialReleaseRequest
	err := runTransition(ctx, "ReleaseMaterial", materialReleaseEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[MaterialReleaseRequest](tx, "material release request", id); err != nil {
			return err
		}
		if err := requireTransition(materialReleaseEntity, id, request.Status, MaterialReleaseStatusReleased,
			request.Status.CanTransitionTo(MaterialReleaseStatusReleased)); err != nil {
			return err
		}
		if request.Quantity.LessThan(decimal.NewFromInt(1)) {
			return utils.InvalidInput("quantity must be at least 1")
		}
		available, err := Ledger(tx).Available(request.movement())
		if err != nil {
			return err
		}
		if available.IsZero() {
			return utils.InsufficientStock("material '%s' not found in stock", request.MaterialName)
		}
		if available.LessThan(request.Quantity) {
			return utils.InsufficientStock("insufficient stock for '%s'. Requested: %s, Available: %s",
				request.MaterialName, request.Quantity.String(), available.String())
		}
		return request.transition(ctx, tx, MaterialReleaseStatusReleased)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// DecideMaterialRelease approves (debiting stock after re-checking it) or rejects a released request.
func DecideMaterialRelease(ctx context.Context, id int, rawDecision string) (*MaterialReleaseRequest, error) {
	decision, err := ParseDecision(rawDecision)
	if err != nil {
		return nil, utils.InvalidInput("%s", err.Error())
	}

	var request *MaterialReleaseRequest
	err = runTransition(ctx, "DecideMaterialRelease", materialReleaseEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[MaterialReleaseRequest](tx, "material release request", id); err != nil {
			return err
		}
		if decision == DecisionReject {
			return request.transition(ctx, tx, MaterialReleaseStatusRejected)
		}
		if err := requireTransition(materialReleaseEntity, id, request.Status, MaterialReleaseStatusApproved,
			request.Status.CanTransitionTo(MaterialReleaseStatusApproved)); err != nil {
			return err
		}
		if _, err := Ledger(tx).Debit(request.movement()); err != nil {
			return err
		}
		return request.transition(ctx, tx, MaterialReleaseStatusApproved)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func ListMaterialReleaseRequests(ctx context.Context, status *MaterialReleaseStatus) ([]*MaterialReleaseRequest, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*MaterialReleaseRequest
	if err := dbCtx.Order("requested_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
