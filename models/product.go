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

// Product is a sellable catalog door. Quantity is the stock consumed by order release.
type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Title       string          `gorm:"size:150;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	ImageUrl    string          `gorm:"size:500" json:"image_url"`
	Status      ProductStatus   `gorm:"size:20;not null;default:active;index" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Title       string          `json:"title" binding:"required" validate:"required,max=150"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	ImageUrl    string          `json:"image_url" validate:"omitempty,url"`
}

type UpdateProductInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageUrl    *string          `json:"image_url"`
	Status      *ProductStatus   `json:"status"`
}

/*
caches:
	ActiveProductList
*/

const activeProductListKey = "ActiveProductList"

func (p Product) clearCache() {
	if err := config.RemoveRedisKey(activeProductListKey); err != nil {
		config.LogError(config.GetLogger(), "models", "Product.clearCache", "redis", p.ID, err)
	}
}

func (input *NewProduct) validate() error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if strings.TrimSpace(input.Title) == "" {
		return utils.InvalidInput("title is required")
	}
	if !input.Price.IsPositive() {
		return utils.InvalidInput("price must be greater than zero")
	}
	return nil
}

// CreateProduct adds a catalog product; an initial quantity is credited through the ledger.
func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := Product{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		ImageUrl:    input.ImageUrl,
		Status:      ProductStatusActive,
	}
	err := runTransition(ctx, "CreateProduct", "product", 0, func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if input.Quantity == 0 {
			return nil
		}
		if _, err := Ledger(tx).Credit(StockMovement{
			Class:         StockClassProduct,
			ItemId:        product.ID,
			Quantity:      decimal.NewFromInt(int64(input.Quantity)),
			Type:          InventoryLogTypeAdd,
			ReferenceType: "product",
			ReferenceId:   product.ID,
		}); err != nil {
			return err
		}
		product.Quantity = input.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	product.clearCache()
	return &product, nil
}

// UpdateProduct changes catalog fields. Stock is never edited here, and snapshots
// already taken by carts and orders keep their price.
func UpdateProduct(ctx context.Context, id int, input *UpdateProductInput) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, "product", id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, utils.InvalidInput("title is required")
		}
		updates["Title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["Description"] = *input.Description
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, utils.InvalidInput("price must be greater than zero")
		}
		updates["Price"] = *input.Price
	}
	if input.ImageUrl != nil {
		updates["ImageUrl"] = *input.ImageUrl
	}
	if input.Status != nil {
		if *input.Status != ProductStatusActive && *input.Status != ProductStatusInactive {
			return nil, utils.InvalidInput("invalid product status %q", *input.Status)
		}
		updates["Status"] = *input.Status
	}
	if len(updates) == 0 {
		return product, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, err
	}
	product.clearCache()
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, "product", id)
}

// ListActiveProducts returns the storefront catalog, served from redis when cached.
func ListActiveProducts(ctx context.Context) ([]*Product, error) {
	if config.CatalogCacheEnabled() {
		cached, err := utils.RetrieveRedisList[Product](activeProductListKey)
		if err != nil {
			config.LogError(config.GetLogger(), "models", "ListActiveProducts", "redis", nil, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	db := config.GetDB()
	var results []*Product
	if err := db.WithContext(ctx).
		Where("status = ?", ProductStatusActive).
		Order("title, id").
		Find(&results).Error; err != nil {
		return nil, err
	}

	if config.CatalogCacheEnabled() {
		if err := utils.StoreRedisList(activeProductListKey, results); err != nil {
			config.LogError(config.GetLogger(), "models", "ListActiveProducts", "redis", nil, err)
		}
	}
	return results, nil
}

func ListProducts(ctx context.Context) ([]*Product, error) {
	db := config.GetDB()
	var results []*Product
	if err := db.WithContext(ctx).Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
