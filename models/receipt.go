package models

import (
	"context"
	"fmt"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is issued once per order after finance confirms its payment.
type Receipt struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ReceiptNumber string          `gorm:"size:30;not null;uniqueIndex" json:"receipt_number"`
	OrderId       int             `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerId    int             `gorm:"not null;index" json:"customer_id"`
	PaymentId     int             `gorm:"not null" json:"payment_id"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_paid"`
	Code          string          `gorm:"size:20" json:"code"`
	GeneratedAt   time.Time       `gorm:"autoCreateTime" json:"generated_at"`
}

// ServiceReceipt is issued once per service booking after its payment is confirmed.
type ServiceReceipt struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ReceiptNumber string          `gorm:"size:30;not null;uniqueIndex" json:"receipt_number"`
	BookingId     int             `gorm:"not null;uniqueIndex" json:"booking_id"`
	CustomerId    int             `gorm:"not null;index" json:"customer_id"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_paid"`
	Code          string          `gorm:"size:20;not null" json:"code"`
	GeneratedAt   time.Time       `gorm:"autoCreateTime" json:"generated_at"`
}

type ReceiptLine struct {
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderReceiptView is the data a receipt renderer needs for an order.
type OrderReceiptView struct {
	Receipt       *Receipt        `json:"receipt"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	Lines         []ReceiptLine   `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	OrderStatus   OrderStatus     `json:"order_status"`
	Currency      string          `json:"currency"`
}

const receiptCurrency = "KES"

func newReceiptNumber(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, config.NextId().Base36())
}

func receiptLines(items []*OrderItem) []ReceiptLine {
	lines := make([]ReceiptLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, ReceiptLine{
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  item.Subtotal,
		})
	}
	return lines
}

// IssueOrderReceipt creates the order's receipt, or returns the one already issued.
func IssueOrderReceipt(ctx context.Context, orderId int) (*Receipt, error) {
	var receipt Receipt
	err := runTransition(ctx, "IssueOrderReceipt", orderEntity, orderId, func(tx *gorm.DB) error {
		order, err := utils.FetchModelForUpdate[Order](tx, "order", orderId, "Payment")
		if err != nil {
			return err
		}
		err = tx.Where("order_id = ?", orderId).Take(&receipt).Error
		if err == nil {
			return nil
		}
		if !utils.IsNotFound(err) {
			return err
		}
		if order.Payment == nil || order.Payment.Status != PaymentStatusConfirmed {
			return utils.InvalidState("order %d payment has not been confirmed", orderId)
		}
		receipt = Receipt{
			ReceiptNumber: newReceiptNumber("RCT"),
			OrderId:       order.ID,
			CustomerId:    order.CustomerId,
			PaymentId:     order.Payment.ID,
			AmountPaid:    order.Payment.AmountPaid,
			Code:          order.Payment.Code,
		}
		return tx.Create(&receipt).Error
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetOrderReceipt issues the receipt if needed and assembles the display data for the order's owner.
func GetOrderReceipt(ctx context.Context, orderId int, customerId *int) (*OrderReceiptView, error) {
	order, err := GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if customerId != nil && order.CustomerId != *customerId {
		return nil, utils.Unauthorized("order %d does not belong to customer %d", orderId, *customerId)
	}
	receipt, err := IssueOrderReceipt(ctx, orderId)
	if err != nil {
		return nil, err
	}

	view := &OrderReceiptView{
		Receipt:     receipt,
		OrderNumber: order.OrderNumber,
		Lines:       receiptLines(order.Items),
		Total:       order.Total,
		OrderStatus: order.Status,
		Currency:    receiptCurrency,
	}
	if order.Payment != nil {
		view.PaymentStatus = order.Payment.Status
	}
	if customer, err := GetCustomer(ctx, order.CustomerId); err == nil {
		view.CustomerName = customer.Name
		view.CustomerEmail = customer.Email
		view.CustomerPhone = customer.Phone
	} else if !utils.IsNotFound(err) {
		return nil, err
	}
	return view, nil
}

// IssueServiceReceipt creates the booking's receipt once its payment is confirmed.
func IssueServiceReceipt(ctx context.Context, bookingId int) (*ServiceReceipt, error) {
	var receipt ServiceReceipt
	err := runTransition(ctx, "IssueServiceReceipt", serviceBookingEntity, bookingId, func(tx *gorm.DB) error {
		booking, err := utils.FetchModelForUpdate[ServiceBooking](tx, "service booking", bookingId)
		if err != nil {
			return err
		}
		err = tx.Where("booking_id = ?", bookingId).Take(&receipt).Error
		if err == nil {
			return nil
		}
		if !utils.IsNotFound(err) {
			return err
		}
		if booking.PaymentStatus != ServicePaymentStatusConfirmed {
			return utils.InvalidState("service booking %d payment has not been confirmed", bookingId)
		}
		receipt = ServiceReceipt{
			ReceiptNumber: newReceiptNumber("SRV"),
			BookingId:     booking.ID,
			CustomerId:    booking.CustomerId,
			AmountPaid:    booking.Price,
			Code:          booking.PaymentCode,
		}
		return tx.Create(&receipt).Error
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func ListServiceReceipts(ctx context.Context, customerId int) ([]*ServiceReceipt, error) {
	db := config.GetDB()
	var results []*ServiceReceipt
	if err := db.WithContext(ctx).Where("customer_id = ?", customerId).Order("generated_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
