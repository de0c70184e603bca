package models

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignedTask is the blacksmith's copy of a production request.
// ProductionRequestId is nil only for tasks created before the back-reference existed.
type AssignedTask struct {
	ID                  int                `gorm:"primary_key" json:"id"`
	ProductionRequestId *int               `gorm:"index" json:"production_request_id"`
	DoorName            string             `gorm:"size:150;not null" json:"door_name"`
	Quantity            int                `gorm:"not null" json:"quantity"`
	Description         string             `gorm:"size:255;not null" json:"description"`
	Status              AssignedTaskStatus `gorm:"size:20;not null;default:assigned;index" json:"status"`
	AssignedAt          time.Time          `gorm:"autoCreateTime" json:"assigned_at"`
	UpdatedAt           time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

const assignedTaskEntity = "assigned_task"

func (t *AssignedTask) transition(ctx context.Context, tx *gorm.DB, to AssignedTaskStatus) error {
	from := t.Status
	if err := requireTransition(assignedTaskEntity, t.ID, from, to, from.CanTransitionTo(to)); err != nil {
		return err
	}
	if err := tx.Model(t).Update("status", to).Error; err != nil {
		return err
	}
	t.Status = to
	return recordEvent(ctx, tx, EventAssignedTaskTransitioned, assignedTaskEntity, t.ID, string(from), string(to), t)
}

// originatingRequest locks the production request this task was created from.
// Tasks without a back-reference fall back to the oldest request with the same door name and
// description that can still move to next. It returns nil when nothing matches.
func (t *AssignedTask) originatingRequest(tx *gorm.DB, next ProductionRequestStatus) (*ProductionRequest, error) {
	locked := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	if t.ProductionRequestId != nil {
		var request ProductionRequest
		if err := locked.First(&request, *t.ProductionRequestId).Error; err != nil {
			if utils.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &request, nil
	}

	var candidates []ProductionRequest
	if err := locked.
		Where("door_name = ? AND description = ?", t.DoorName, t.Description).
		Order("id ASC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].Status.CanTransitionTo(next) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// syncRequest mirrors task progress onto the originating production request when its state allows it.
func (t *AssignedTask) syncRequest(ctx context.Context, tx *gorm.DB, next ProductionRequestStatus) error {
	request, err := t.originatingRequest(tx, next)
	if err != nil {
		return err
	}
	if request == nil || request.Status == next {
		return nil
	}
	if !request.Status.CanTransitionTo(next) {
		config.GetLogger().WithFields(logrus.Fields{
			"field":              "AssignedTask.syncRequest",
			"task_id":            t.ID,
			"production_request": request.ID,
			"status":             request.Status,
			"next":               next,
		}).Warn("production request out of step with task; left unchanged")
		return nil
	}
	return request.transition(ctx, tx, next)
}

func advanceTask(ctx context.Context, name string, id int, fn func(tx *gorm.DB, task *AssignedTask) error) (*AssignedTask, error) {
	var task *AssignedTask
	err := runTransition(ctx, name, assignedTaskEntity, id, func(tx *gorm.DB) error {
		var err error
		if task, err = utils.FetchModelForUpdate[AssignedTask](tx, "task", id); err != nil {
			return err
		}
		return fn(tx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (t *AssignedTask) start(ctx context.Context, tx *gorm.DB) error {
	if err := t.transition(ctx, tx, AssignedTaskStatusInProduction); err != nil {
		return err
	}
	return t.syncRequest(ctx, tx, ProductionRequestStatusInProduction)
}

// StartTask puts an assigned task into production.
func StartTask(ctx context.Context, id int) (*AssignedTask, error) {
	return advanceTask(ctx, "StartTask", id, func(tx *gorm.DB, task *AssignedTask) error {
		return task.start(ctx, tx)
	})
}

// CompleteTask finishes a task that is in production.
func CompleteTask(ctx context.Context, id int) (*AssignedTask, error) {
	return advanceTask(ctx, "CompleteTask", id, func(tx *gorm.DB, task *AssignedTask) error {
		if err := task.transition(ctx, tx, AssignedTaskStatusCompleted); err != nil {
			return err
		}
		return task.syncRequest(ctx, tx, ProductionRequestStatusCompleted)
	})
}

// ApproveTask accepts finished doors: the production request is approved and the store is credited.
func ApproveTask(ctx context.Context, id int) (*AssignedTask, error) {
	return advanceTask(ctx, "ApproveTask", id, func(tx *gorm.DB, task *AssignedTask) error {
		if err := task.transition(ctx, tx, AssignedTaskStatusApproved); err != nil {
			return err
		}
		if err := task.syncRequest(ctx, tx, ProductionRequestStatusApproved); err != nil {
			return err
		}
		_, err := Ledger(tx).Credit(StockMovement{
			Class:         StockClassProductStore,
			Name:          task.DoorName,
			Description:   task.Description,
			Quantity:      decimal.NewFromInt(int64(task.Quantity)),
			Type:          InventoryLogTypeAdd,
			ReferenceType: assignedTaskEntity,
			ReferenceId:   task.ID,
		})
		return err
	})
}

func ListAssignedTasks(ctx context.Context, status *AssignedTaskStatus) ([]*AssignedTask, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*AssignedTask
	if err := dbCtx.Order("assigned_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
