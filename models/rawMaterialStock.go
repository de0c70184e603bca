package models

import (
	"context"
	"strings"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/shopspring/decimal"
)

// RawMaterialStock is one lot of a raw material. A material may be split across several lots;
// its on-hand quantity is the sum over lots whose name matches case-insensitively.
type RawMaterialStock struct {
	ID           int             `gorm:"primary_key" json:"id"`
	MaterialName string          `gorm:"size:150;not null;index" json:"material_name"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	Unit         string          `gorm:"size:30" json:"unit"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RawMaterialBalance is the aggregated on-hand quantity of one material.
type RawMaterialBalance struct {
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	Lots         int             `json:"lots"`
}

func normalizeMaterialName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func ListRawMaterialStock(ctx context.Context) ([]*RawMaterialStock, error) {
	db := config.GetDB()
	var lots []*RawMaterialStock
	if err := db.WithContext(ctx).Order("material_name, id").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// SummarizeRawMaterialStock folds lots into one balance per material, keyed case-insensitively.
func SummarizeRawMaterialStock(lots []*RawMaterialStock) []*RawMaterialBalance {
	index := make(map[string]*RawMaterialBalance)
	var out []*RawMaterialBalance
	for _, lot := range lots {
		key := normalizeMaterialName(lot.MaterialName)
		b, ok := index[key]
		if !ok {
			b = &RawMaterialBalance{MaterialName: lot.MaterialName, Unit: lot.Unit}
			index[key] = b
			out = append(out, b)
		}
		b.Quantity = b.Quantity.Add(lot.Quantity)
		b.Lots++
	}
	return out
}
