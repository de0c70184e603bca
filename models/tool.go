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

type Tool struct {
	ID                int       `gorm:"primary_key" json:"id"`
	Name              string    `gorm:"size:150;not null;uniqueIndex" json:"name"`
	Unit              string    `gorm:"size:30" json:"unit"`
	QuantityAvailable int       `gorm:"not null;default:0" json:"quantity_available"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTool struct {
	Name     string `json:"name" binding:"required" validate:"required,max=150"`
	Unit     string `json:"unit" validate:"max=30"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// CreateTool registers a tool and credits its opening quantity.
func CreateTool(ctx context.Context, input *NewTool) (*Tool, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	tool := Tool{
		Name: strings.TrimSpace(input.Name),
		Unit: strings.TrimSpace(input.Unit),
	}
	err := runTransition(ctx, "CreateTool", "tool", 0, func(tx *gorm.DB) error {
		if err := tx.Create(&tool).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return utils.InvalidInput("tool %q already exists", tool.Name)
			}
			return err
		}
		if input.Quantity == 0 {
			return nil
		}
		if _, err := Ledger(tx).Credit(StockMovement{
			Class:         StockClassTool,
			ItemId:        tool.ID,
			Quantity:      decimal.NewFromInt(int64(input.Quantity)),
			Type:          InventoryLogTypeAdd,
			ReferenceType: "tool",
			ReferenceId:   tool.ID,
		}); err != nil {
			return err
		}
		tool.QuantityAvailable = input.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tool, nil
}

func ListTools(ctx context.Context) ([]*Tool, error) {
	db := config.GetDB()
	var results []*Tool
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
