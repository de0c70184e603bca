package models

import (
	"context"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"gorm.io/gorm"
)

type ProductionRequest struct {
	ID          int                     `gorm:"primary_key" json:"id"`
	DoorName    string                  `gorm:"size:150;not null;index:idx_production_request_door" json:"door_name"`
	Quantity    int                     `gorm:"not null" json:"quantity"`
	Description string                  `gorm:"size:255;not null;index:idx_production_request_door" json:"description"`
	Status      ProductionRequestStatus `gorm:"size:30;not null;default:pending;index" json:"status"`
	CreatedAt   time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductionRequest struct {
	DoorName    string `json:"door_name" binding:"required" validate:"required,max=150"`
	Quantity    int    `json:"quantity" binding:"required" validate:"required,gt=0"`
	Description string `json:"description" binding:"required" validate:"required,max=255"`
}

const productionRequestEntity = "production_request"

func (r *ProductionRequest) transition(ctx context.Context, tx *gorm.DB, to ProductionRequestStatus) error {
	from := r.Status
	if err := requireTransition(productionRequestEntity, r.ID, from, to, from.CanTransitionTo(to)); err != nil {
		return err
	}
	if err := tx.Model(r).Update("status", to).Error; err != nil {
		return err
	}
	r.Status = to
	return recordEvent(ctx, tx, EventProductionRequestTransitioned, productionRequestEntity, r.ID, string(from), string(to), r)
}

func CreateProductionRequest(ctx context.Context, input *NewProductionRequest) (*ProductionRequest, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	request := ProductionRequest{
		DoorName:    strings.TrimSpace(input.DoorName),
		Quantity:    input.Quantity,
		Description: strings.TrimSpace(input.Description),
		Status:      ProductionRequestStatusPending,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func advanceProductionRequest(ctx context.Context, name string, id int, to ProductionRequestStatus) (*ProductionRequest, error) {
	var request *ProductionRequest
	err := runTransition(ctx, name, productionRequestEntity, id, func(tx *gorm.DB) error {
		var err error
		if request, err = utils.FetchModelForUpdate[ProductionRequest](tx, "production request", id); err != nil {
			return err
		}
		return request.transition(ctx, tx, to)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// RequestDoor forwards a pending request to the production manager.
func RequestDoor(ctx context.Context, id int) (*ProductionRequest, error) {
	return advanceProductionRequest(ctx, "RequestDoor", id, ProductionRequestStatusDoorRequested)
}

func ApproveDoorRequest(ctx context.Context, id int) (*ProductionRequest, error) {
	return advanceProductionRequest(ctx, "ApproveDoorRequest", id, ProductionRequestStatusDoorApproved)
}

// AssignBlacksmithTask moves an approved request to door-assigned and spawns its task.
func AssignBlacksmithTask(ctx context.Context, id int) (*AssignedTask, error) {
	var task AssignedTask
	err := runTransition(ctx, "AssignBlacksmithTask", productionRequestEntity, id, func(tx *gorm.DB) error {
		request, err := utils.FetchModelForUpdate[ProductionRequest](tx, "production request", id)
		if err != nil {
			return err
		}
		if err := request.transition(ctx, tx, ProductionRequestStatusDoorAssigned); err != nil {
			return err
		}
		requestId := request.ID
		task = AssignedTask{
			ProductionRequestId: &requestId,
			DoorName:            request.DoorName,
			Quantity:            request.Quantity,
			Description:         request.Description,
			Status:              AssignedTaskStatusAssigned,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return recordEvent(ctx, tx, EventAssignedTaskTransitioned, assignedTaskEntity, task.ID, "", string(task.Status), task)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func GetProductionRequest(ctx context.Context, id int) (*ProductionRequest, error) {
	return utils.FetchModel[ProductionRequest](ctx, "production request", id)
}

func ListProductionRequests(ctx context.Context, status *ProductionRequestStatus) ([]*ProductionRequest, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*ProductionRequest
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
