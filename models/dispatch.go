package models

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"gorm.io/gorm"
)

type Dispatch struct {
	ID          int            `gorm:"primary_key" json:"id"`
	OrderId     int            `gorm:"not null;uniqueIndex" json:"order_id"`
	Order       *Order         `gorm:"foreignKey:OrderId" json:"order,omitempty"`
	DriverId    int            `gorm:"not null;index" json:"driver_id"`
	Status      DispatchStatus `gorm:"size:20;not null;default:assigned;index" json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

const dispatchEntity = "dispatch"

// DispatchOrder assigns a released order to an active driver and ships it.
func DispatchOrder(ctx context.Context, orderId int, driverId int) (*Dispatch, error) {
	if _, err := FindActiveEmployeeByRoleAndId(ctx, EmployeeRoleDriver, driverId); err != nil {
		return nil, err
	}

	var dispatch Dispatch
	err := runTransition(ctx, "DispatchOrder", orderEntity, orderId, func(tx *gorm.DB) error {
		order, err := utils.FetchModelForUpdate[Order](tx, "order", orderId)
		if err != nil {
			return err
		}
		if err := order.transition(ctx, tx, OrderStatusShipped); err != nil {
			return err
		}
		dispatch = Dispatch{
			OrderId:  order.ID,
			DriverId: driverId,
			Status:   DispatchStatusAssigned,
		}
		if err := tx.Create(&dispatch).Error; err != nil {
			return err
		}
		dispatch.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dispatch, nil
}

// MarkDelivered is the driver's confirmation; it closes the dispatch and delivers the order.
func MarkDelivered(ctx context.Context, dispatchId int, driverId int) (*Dispatch, error) {
	var dispatch *Dispatch
	err := runTransition(ctx, "MarkDelivered", dispatchEntity, dispatchId, func(tx *gorm.DB) error {
		var err error
		if dispatch, err = utils.FetchModelForUpdate[Dispatch](tx, "dispatch", dispatchId); err != nil {
			return err
		}
		if dispatch.DriverId != driverId {
			return utils.Unauthorized("dispatch %d is not assigned to driver %d", dispatchId, driverId)
		}
		from := dispatch.Status
		if err := requireTransition(dispatchEntity, dispatchId, from, DispatchStatusDelivered, from.CanTransitionTo(DispatchStatusDelivered)); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.Model(dispatch).Updates(map[string]interface{}{
			"Status":      DispatchStatusDelivered,
			"DeliveredAt": now,
		}).Error; err != nil {
			return err
		}
		dispatch.Status = DispatchStatusDelivered
		dispatch.DeliveredAt = &now
		if err := recordEvent(ctx, tx, EventDispatchDelivered, dispatchEntity, dispatch.ID, string(from), string(dispatch.Status), dispatch); err != nil {
			return err
		}

		order, err := utils.FetchModelForUpdate[Order](tx, "order", dispatch.OrderId)
		if err != nil {
			return err
		}
		if err := order.transition(ctx, tx, OrderStatusDelivered); err != nil {
			return err
		}
		dispatch.Order = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispatch, nil
}

func ListDriverDispatches(ctx context.Context, driverId int) ([]*Dispatch, error) {
	db := config.GetDB()
	var results []*Dispatch
	if err := db.WithContext(ctx).
		Preload("Order").Preload("Order.Items").
		Where("driver_id = ?", driverId).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
