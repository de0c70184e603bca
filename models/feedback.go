package models

import (
	"context"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"gorm.io/gorm"
)

// Feedback is a customer's note on an order. It is independent of the order's status.
type Feedback struct {
	ID                int        `gorm:"primary_key" json:"id"`
	OrderId           int        `gorm:"not null;index" json:"order_id"`
	CustomerId        int        `gorm:"not null;index" json:"customer_id"`
	Message           string     `gorm:"type:text;not null" json:"message"`
	Reply             *string    `gorm:"type:text" json:"reply"`
	DispatchManagerId *int       `json:"dispatch_manager_id"`
	RepliedAt         *time.Time `json:"replied_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFeedback struct {
	Message string `json:"message" binding:"required" validate:"required,max=2000"`
}

type FeedbackReply struct {
	Reply string `json:"reply" binding:"required" validate:"required,max=2000"`
}

func SubmitFeedback(ctx context.Context, orderId int, customerId int, input *NewFeedback) (*Feedback, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	order, err := utils.FetchModel[Order](ctx, "order", orderId)
	if err != nil {
		return nil, err
	}
	if order.CustomerId != customerId {
		return nil, utils.Unauthorized("order %d does not belong to customer %d", orderId, customerId)
	}
	feedback := Feedback{
		OrderId:    orderId,
		CustomerId: customerId,
		Message:    strings.TrimSpace(input.Message),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

// ReplyToFeedback lets an active dispatch manager answer a feedback once.
func ReplyToFeedback(ctx context.Context, feedbackId int, managerId int, input *FeedbackReply) (*Feedback, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if _, err := FindActiveEmployeeByRoleAndId(ctx, EmployeeRoleDispatchManager, managerId); err != nil {
		return nil, err
	}

	var feedback *Feedback
	err := runTransition(ctx, "ReplyToFeedback", "feedback", feedbackId, func(tx *gorm.DB) error {
		var err error
		if feedback, err = utils.FetchModelForUpdate[Feedback](tx, "feedback", feedbackId); err != nil {
			return err
		}
		if feedback.Reply != nil {
			return utils.InvalidState("feedback %d already has a reply", feedbackId)
		}
		reply := strings.TrimSpace(input.Reply)
		now := time.Now().UTC()
		if err := tx.Model(feedback).Updates(map[string]interface{}{
			"Reply":             reply,
			"DispatchManagerId": managerId,
			"RepliedAt":         now,
		}).Error; err != nil {
			return err
		}
		feedback.Reply = &reply
		feedback.DispatchManagerId = &managerId
		feedback.RepliedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

func ListFeedbacks(ctx context.Context, customerId *int) ([]*Feedback, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if customerId != nil {
		dbCtx = dbCtx.Where("customer_id = ?", *customerId)
	}
	var results []*Feedback
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
