package models

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     int             `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerId  int             `gorm:"not null;index" json:"customer_id"`
	Code        string          `gorm:"size:20;not null" json:"code"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_paid"`
	Status      PaymentStatus   `gorm:"size:20;not null;default:paid;index" json:"status"`
	ConfirmedAt *time.Time      `json:"confirmed_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

const paymentEntity = "payment"

// ConfirmPayment is the finance sign-off on a customer payment. The order status is not touched.
func ConfirmPayment(ctx context.Context, id int) (*Payment, error) {
	var payment *Payment
	err := runTransition(ctx, "ConfirmPayment", paymentEntity, id, func(tx *gorm.DB) error {
		var err error
		if payment, err = utils.FetchModelForUpdate[Payment](tx, "payment", id); err != nil {
			return err
		}
		from := payment.Status
		if err := requireTransition(paymentEntity, id, from, PaymentStatusConfirmed, from.CanTransitionTo(PaymentStatusConfirmed)); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.Model(payment).Updates(map[string]interface{}{
			"Status":      PaymentStatusConfirmed,
			"ConfirmedAt": now,
		}).Error; err != nil {
			return err
		}
		payment.Status = PaymentStatusConfirmed
		payment.ConfirmedAt = &now
		return recordEvent(ctx, tx, EventPaymentConfirmed, paymentEntity, payment.ID, string(from), string(payment.Status), payment)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func ListPayments(ctx context.Context, status *PaymentStatus) ([]*Payment, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*Payment
	if err := dbCtx.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
