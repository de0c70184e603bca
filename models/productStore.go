package models

import (
	"context"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStore holds finished doors coming out of production, keyed by door name and description.
type ProductStore struct {
	ID          int       `gorm:"primary_key" json:"id"`
	DoorName    string    `gorm:"size:150;not null;uniqueIndex:idx_product_store_door" json:"door_name"`
	Description string    `gorm:"size:255;not null;default:'';uniqueIndex:idx_product_store_door" json:"description"`
	Quantity    int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func ListProductStore(ctx context.Context) ([]*ProductStore, error) {
	db := config.GetDB()
	var results []*ProductStore
	if err := db.WithContext(ctx).Where("quantity > 0").Order("door_name, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type NewStoreTransfer struct {
	StoreId   int `json:"store_id" binding:"required" validate:"required,gt=0"`
	ProductId int `json:"product_id" binding:"required" validate:"required,gt=0"`
	Quantity  int `json:"quantity" binding:"required" validate:"required,gt=0"`
}

// TransferStoreToCatalog moves finished doors from the production store into a sellable catalog product.
func TransferStoreToCatalog(ctx context.Context, input *NewStoreTransfer) (*Product, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	var product Product
	err := runTransition(ctx, "TransferStoreToCatalog", "product_store", input.StoreId, func(tx *gorm.DB) error {
		qty := decimal.NewFromInt(int64(input.Quantity))
		ledger := Ledger(tx)
		if _, err := ledger.Debit(StockMovement{
			Class:         StockClassProductStore,
			ItemId:        input.StoreId,
			Quantity:      qty,
			Type:          InventoryLogTypeRelease,
			ReferenceType: "product",
			ReferenceId:   input.ProductId,
		}); err != nil {
			return err
		}
		if _, err := ledger.Credit(StockMovement{
			Class:         StockClassProduct,
			ItemId:        input.ProductId,
			Quantity:      qty,
			Type:          InventoryLogTypeAdd,
			ReferenceType: "product_store",
			ReferenceId:   input.StoreId,
		}); err != nil {
			return err
		}
		return tx.First(&product, input.ProductId).Error
	})
	if err != nil {
		return nil, err
	}
	product.clearCache()
	return &product, nil
}
