package models

import (
	"context"
	"errors"
	"time"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errInventoryLogImmutable = errors.New("inventory log entries are append-only")

// InventoryLog is the audit trail of every stock mutation. Quantity is signed:
// credits are positive, debits negative.
type InventoryLog struct {
	ID             int              `gorm:"primary_key" json:"id"`
	StockClass     StockClass       `gorm:"size:20;not null;index:idx_inventory_log_item" json:"stock_class"`
	ItemId         int              `gorm:"not null;index:idx_inventory_log_item" json:"item_id"`
	ItemName       string           `gorm:"size:255;not null" json:"item_name"`
	Quantity       decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Type           InventoryLogType `gorm:"size:20;not null" json:"type"`
	ReferenceType  string           `gorm:"size:60;index:idx_inventory_log_reference" json:"reference_type"`
	ReferenceId    int              `gorm:"index:idx_inventory_log_reference" json:"reference_id"`
	RelatedOrderId *int             `gorm:"index" json:"related_order_id"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (l *InventoryLog) BeforeUpdate(tx *gorm.DB) error {
	return errInventoryLogImmutable
}

func (l *InventoryLog) BeforeDelete(tx *gorm.DB) error {
	return errInventoryLogImmutable
}

type InventoryLogFilter struct {
	StockClass    StockClass `form:"stock_class"`
	ItemId        int        `form:"item_id"`
	ReferenceType string     `form:"reference_type"`
	ReferenceId   int        `form:"reference_id"`
	Limit         int        `form:"limit"`
}

func ListInventoryLogs(ctx context.Context, filter InventoryLogFilter) ([]*InventoryLog, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&InventoryLog{})
	if filter.StockClass != "" {
		q = q.Where("stock_class = ?", filter.StockClass)
	}
	if filter.ItemId > 0 {
		q = q.Where("item_id = ?", filter.ItemId)
	}
	if filter.ReferenceType != "" {
		q = q.Where("reference_type = ?", filter.ReferenceType)
	}
	if filter.ReferenceId > 0 {
		q = q.Where("reference_id = ?", filter.ReferenceId)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []*InventoryLog
	if err := q.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
