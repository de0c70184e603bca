package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Order struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderNumber string          `gorm:"size:30;not null;uniqueIndex" json:"order_number"`
	CustomerId  int             `gorm:"not null;index" json:"customer_id"`
	Items       []*OrderItem    `gorm:"foreignKey:OrderId" json:"items"`
	Total       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
	Status      OrderStatus     `gorm:"size:20;not null;default:placed;index" json:"status"`
	PaymentId   *int            `gorm:"index" json:"payment_id"`
	Payment     *Payment        `gorm:"foreignKey:PaymentId" json:"payment,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is the cart line frozen at checkout. Its price never follows later catalog changes.
type OrderItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     int             `gorm:"not null;index" json:"order_id"`
	ProductId   int             `gorm:"not null;index" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Title       string          `gorm:"size:150" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	ImageUrl    string          `gorm:"size:500" json:"image_url"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"subtotal"`
}

type CheckoutInput struct {
	Code       string          `json:"code" binding:"required" validate:"required"`
	AmountPaid decimal.Decimal `json:"amount_paid" binding:"required"`
}

const orderEntity = "order"

func (o *Order) transition(ctx context.Context, tx *gorm.DB, to OrderStatus) error {
	from := o.Status
	if err := requireTransition(orderEntity, o.ID, from, to, from.CanTransitionTo(to)); err != nil {
		return err
	}
	if err := tx.Model(o).Update("status", to).Error; err != nil {
		return err
	}
	o.Status = to
	return recordEvent(ctx, tx, EventOrderTransitioned, orderEntity, o.ID, string(from), string(to), o)
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%s", config.NextId().Base36())
}

// Checkout turns the customer's cart into a paid order. Payment, order and cart deletion commit together.
func Checkout(ctx context.Context, customerId int, input *CheckoutInput) (*Order, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	code := normalizePaymentCode(input.Code)
	if err := ValidateCustomerPaymentCode(code); err != nil {
		return nil, err
	}

	var order Order
	err := runTransition(ctx, "Checkout", "cart", customerId, func(tx *gorm.DB) error {
		var cart Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			Where("customer_id = ?", customerId).
			Take(&cart).Error; err != nil {
			if utils.IsNotFound(err) {
				return utils.InvalidInput("cart is empty")
			}
			return err
		}
		if len(cart.Items) == 0 {
			return utils.InvalidInput("cart is empty")
		}

		total := cart.Total()
		if input.AmountPaid.LessThan(total) {
			return utils.InvalidInput("amount paid %s is less than order total %s", input.AmountPaid.StringFixed(2), total.StringFixed(2))
		}

		order = Order{
			OrderNumber: newOrderNumber(),
			CustomerId:  customerId,
			Total:       total,
			Status:      OrderStatusPlaced,
		}
		for _, item := range cart.Items {
			order.Items = append(order.Items, &OrderItem{
				ProductId:   item.ProductId,
				Quantity:    item.Quantity,
				Title:       item.Title,
				Description: item.Description,
				ImageUrl:    item.ImageUrl,
				Price:       item.Price,
				Subtotal:    item.Subtotal(),
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		payment := Payment{
			OrderId:    order.ID,
			CustomerId: customerId,
			Code:       code,
			AmountPaid: input.AmountPaid,
			Status:     PaymentStatusPaid,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := tx.Model(&order).Update("payment_id", payment.ID).Error; err != nil {
			return err
		}
		order.PaymentId = &payment.ID
		order.Payment = &payment

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&cart).Error; err != nil {
			return err
		}
		return recordEvent(ctx, tx, EventOrderPlaced, orderEntity, order.ID, "", string(order.Status), order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ReleaseOrder hands a confirmed order to dispatch. Every item is validated against locked stock
// before the first debit; any failure leaves stock and order untouched.
func ReleaseOrder(ctx context.Context, id int) (*Order, error) {
	var order *Order
	err := runTransition(ctx, "ReleaseOrder", orderEntity, id, func(tx *gorm.DB) error {
		var err error
		if order, err = utils.FetchModelForUpdate[Order](tx, "order", id, "Items", "Payment"); err != nil {
			return err
		}
		if err := requireTransition(orderEntity, id, order.Status, OrderStatusReleased, order.Status.CanTransitionTo(OrderStatusReleased)); err != nil {
			return err
		}
		if order.Payment == nil || order.Payment.Status != PaymentStatusConfirmed {
			return utils.InvalidState("order %d payment has not been confirmed", id)
		}

		if err := validateOrderStock(tx, order.Items); err != nil {
			return err
		}

		ledger := Ledger(tx)
		orderId := order.ID
		for _, item := range order.Items {
			if _, err := ledger.Debit(StockMovement{
				Class:          StockClassProduct,
				ItemId:         item.ProductId,
				Quantity:       decimal.NewFromInt(int64(item.Quantity)),
				Type:           InventoryLogTypeRelease,
				ReferenceType:  orderEntity,
				ReferenceId:    orderId,
				RelatedOrderId: &orderId,
			}); err != nil {
				return err
			}
		}
		return order.transition(ctx, tx, OrderStatusReleased)
	})
	if err != nil {
		return nil, err
	}
	Product{}.clearCache()
	return order, nil
}

// validateOrderStock locks every product on the order and reports all shortfalls together.
func validateOrderStock(tx *gorm.DB, items []*OrderItem) error {
	needed := map[int]int{}
	var productIds []int
	for _, item := range items {
		if item.Quantity <= 0 {
			return utils.InvalidInput("invalid quantity %d for %s", item.Quantity, item.Title)
		}
		if _, ok := needed[item.ProductId]; !ok {
			productIds = append(productIds, item.ProductId)
		}
		needed[item.ProductId] += item.Quantity
	}

	var products []Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", productIds).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return err
	}
	byId := make(map[int]Product, len(products))
	for _, p := range products {
		byId[p.ID] = p
	}

	var problems []string
	for _, pid := range productIds {
		p, ok := byId[pid]
		if !ok {
			return utils.NotFound("product %d not found", pid)
		}
		if p.Quantity < needed[pid] {
			problems = append(problems, fmt.Sprintf("Not enough %s in stock. Requested: %d, Available: %d", p.Title, needed[pid], p.Quantity))
		}
	}
	if len(problems) > 0 {
		return utils.InsufficientStock("%s", strings.Join(problems, "; "))
	}
	return nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	return utils.FetchModel[Order](ctx, "order", id, "Items", "Payment")
}

type OrderFilter struct {
	CustomerId    *int
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
}

func ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Order{}).Preload("Items").Preload("Payment")
	if filter.CustomerId != nil {
		dbCtx = dbCtx.Where("orders.customer_id = ?", *filter.CustomerId)
	}
	if filter.Status != nil {
		dbCtx = dbCtx.Where("orders.status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		dbCtx = dbCtx.Joins("JOIN payments ON payments.id = orders.payment_id").
			Where("payments.status = ?", *filter.PaymentStatus)
	}
	var results []*Order
	if err := dbCtx.Order("orders.created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
