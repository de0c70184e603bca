package models

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cart is the single open basket of a customer.
type Cart struct {
	ID         int         `gorm:"primary_key" json:"id"`
	CustomerId int         `gorm:"not null;uniqueIndex" json:"customer_id"`
	Items      []*CartItem `gorm:"foreignKey:CartId;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartItem keeps a snapshot of the product as it was when added; checkout prices come from here.
type CartItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CartId      int             `gorm:"not null;index" json:"cart_id"`
	ProductId   int             `gorm:"not null" json:"product_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Title       string          `gorm:"size:150" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	ImageUrl    string          `gorm:"size:500" json:"image_url"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewCartItem struct {
	ProductId int `json:"product_id" binding:"required" validate:"required,gt=0"`
	Quantity  int `json:"quantity" binding:"required" validate:"required,gt=0"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// cartTotal sums quantity x snapshot price over the lines.
func cartTotal(items []*CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) Total() decimal.Decimal {
	return cartTotal(c.Items)
}

// AddToCart snapshots an active product into the customer's cart, creating the cart on first use.
// A product already in the cart at the same price has its quantity increased.
func AddToCart(ctx context.Context, customerId int, input *NewCartItem) (*Cart, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	var cart Cart
	err := runTransition(ctx, "AddToCart", "cart", customerId, func(tx *gorm.DB) error {
		var product Product
		if err := tx.First(&product, input.ProductId).Error; err != nil {
			return utils.NotFoundOr(err, "product")
		}
		if product.Status != ProductStatusActive {
			return utils.InvalidState("product %d is not available", product.ID)
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("customer_id = ?", customerId).Take(&cart).Error
		if utils.IsNotFound(err) {
			cart = Cart{CustomerId: customerId}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var existing CartItem
		err = tx.Where("cart_id = ? AND product_id = ? AND price = ?", cart.ID, product.ID, product.Price).Take(&existing).Error
		if err == nil {
			if err := tx.Model(&existing).Update("quantity", existing.Quantity+input.Quantity).Error; err != nil {
				return err
			}
		} else if utils.IsNotFound(err) {
			item := CartItem{
				CartId:      cart.ID,
				ProductId:   product.ID,
				Quantity:    input.Quantity,
				Title:       product.Title,
				Description: product.Description,
				ImageUrl:    product.ImageUrl,
				Price:       product.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		} else {
			return err
		}

		return tx.Preload("Items").First(&cart, cart.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem drops one line from the customer's cart.
func RemoveCartItem(ctx context.Context, customerId int, itemId int) (*Cart, error) {
	var cart Cart
	err := runTransition(ctx, "RemoveCartItem", "cart", customerId, func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerId).Take(&cart).Error; err != nil {
			return utils.NotFoundOr(err, "cart")
		}
		result := tx.Where("id = ? AND cart_id = ?", itemId, cart.ID).Delete(&CartItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.NotFound("cart item %d not found", itemId)
		}
		return tx.Preload("Items").First(&cart, cart.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func GetCart(ctx context.Context, customerId int) (*Cart, error) {
	db := config.GetDB()
	var cart Cart
	if err := db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerId).Take(&cart).Error; err != nil {
		if utils.IsNotFound(err) {
			return &Cart{CustomerId: customerId, Items: []*CartItem{}}, nil
		}
		return nil, err
	}
	return &cart, nil
}
