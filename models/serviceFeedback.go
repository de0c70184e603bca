package models

import (
	"context"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"gorm.io/gorm"
)

type ServiceFeedback struct {
	ID               int        `gorm:"primary_key" json:"id"`
	BookingId        int        `gorm:"not null;uniqueIndex" json:"booking_id"`
	CustomerId       int        `gorm:"not null;index" json:"customer_id"`
	Message          string     `gorm:"type:text;not null" json:"message"`
	Reply            *string    `gorm:"type:text" json:"reply"`
	ServiceManagerId *int       `json:"service_manager_id"`
	RepliedAt        *time.Time `json:"replied_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SubmitServiceFeedback is open to the booking's customer once the service manager has confirmed the work.
func SubmitServiceFeedback(ctx context.Context, bookingId int, customerId int, input *NewFeedback) (*ServiceFeedback, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	var feedback ServiceFeedback
	err := runTransition(ctx, "SubmitServiceFeedback", serviceBookingEntity, bookingId, func(tx *gorm.DB) error {
		booking, err := utils.FetchModelForUpdate[ServiceBooking](tx, "service booking", bookingId)
		if err != nil {
			return err
		}
		if booking.CustomerId != customerId {
			return utils.Unauthorized("service booking %d does not belong to customer %d", bookingId, customerId)
		}
		if !booking.ServiceStatus.HasReached(ServiceStatusServiceManagerConfirmed) {
			return utils.InvalidState("feedback is only allowed after the service manager has confirmed service booking %d", bookingId)
		}
		feedback = ServiceFeedback{
			BookingId:  bookingId,
			CustomerId: customerId,
			Message:    strings.TrimSpace(input.Message),
		}
		if err := tx.Create(&feedback).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return utils.InvalidState("feedback already submitted for service booking %d", bookingId)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func ReplyToServiceFeedback(ctx context.Context, feedbackId int, managerId int, input *FeedbackReply) (*ServiceFeedback, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if _, err := FindActiveEmployeeByRoleAndId(ctx, EmployeeRoleServiceManager, managerId); err != nil {
		return nil, err
	}

	var feedback *ServiceFeedback
	err := runTransition(ctx, "ReplyToServiceFeedback", "service_feedback", feedbackId, func(tx *gorm.DB) error {
		var err error
		if feedback, err = utils.FetchModelForUpdate[ServiceFeedback](tx, "service feedback", feedbackId); err != nil {
			return err
		}
		if feedback.Reply != nil {
			return utils.InvalidState("service feedback %d already has a reply", feedbackId)
		}
		reply := strings.TrimSpace(input.Reply)
		now := time.Now().UTC()
		if err := tx.Model(feedback).Updates(map[string]interface{}{
			"Reply":            reply,
			"ServiceManagerId": managerId,
			"RepliedAt":        now,
		}).Error; err != nil {
			return err
		}
		feedback.Reply = &reply
		feedback.ServiceManagerId = &managerId
		feedback.RepliedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

func ListServiceFeedbacks(ctx context.Context) ([]*ServiceFeedback, error) {
	db := config.GetDB()
	var results []*ServiceFeedback
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
