package models

import (
	"fmt"
	"strings"

	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovement describes one credit or debit against the ledger.
//
// Item identification depends on Class:
//   - raw_material: Name (case-insensitive), Unit used when a new lot is created
//   - product_store: ItemId, or Name + Description
//   - product, tool: ItemId
type StockMovement struct {
	Class          StockClass
	ItemId         int
	Name           string
	Description    string
	Unit           string
	Quantity       decimal.Decimal
	Type           InventoryLogType
	ReferenceType  string
	ReferenceId    int
	RelatedOrderId *int
}

// StockLedger is the single check-then-mutate entry point for every stock class.
// It always runs inside the caller's transaction so stock, log entry and the caller's
// status change commit together.
type StockLedger struct {
	tx *gorm.DB
}

func Ledger(tx *gorm.DB) StockLedger {
	return StockLedger{tx: tx}
}

func (l StockLedger) locked() *gorm.DB {
	return l.tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func validateMovement(m StockMovement) error {
	if !m.Quantity.IsPositive() {
		return utils.InvalidInput("quantity must be greater than zero")
	}
	switch m.Class {
	case StockClassRawMaterial:
		if strings.TrimSpace(m.Name) == "" {
			return utils.InvalidInput("material name is required")
		}
	case StockClassProductStore:
		if m.ItemId <= 0 && strings.TrimSpace(m.Name) == "" {
			return utils.InvalidInput("store item id or door name is required")
		}
		if !m.Quantity.IsInteger() {
			return utils.InvalidInput("door quantity must be a whole number")
		}
	case StockClassProduct, StockClassTool:
		if m.ItemId <= 0 {
			return utils.InvalidInput("item id is required")
		}
		if !m.Quantity.IsInteger() {
			return utils.InvalidInput("%s quantity must be a whole number", m.Class)
		}
	default:
		return utils.InvalidInput("unknown stock class %q", m.Class)
	}
	return nil
}

// Credit adds stock and appends one positive log entry.
func (l StockLedger) Credit(m StockMovement) (*InventoryLog, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}
	if m.Type == "" {
		m.Type = InventoryLogTypeAdd
	}

	var itemId int
	var itemName string
	switch m.Class {
	case StockClassRawMaterial:
		var lot RawMaterialStock
		err := l.locked().
			Where("LOWER(material_name) = ?", normalizeMaterialName(m.Name)).
			Order("id DESC").
			Take(&lot).Error
		if err != nil && !utils.IsNotFound(err) {
			return nil, err
		}
		if err == nil {
			if err := l.tx.Model(&lot).Update("quantity", lot.Quantity.Add(m.Quantity)).Error; err != nil {
				return nil, err
			}
		} else {
			lot = RawMaterialStock{MaterialName: strings.TrimSpace(m.Name), Quantity: m.Quantity, Unit: m.Unit}
			if err := l.tx.Create(&lot).Error; err != nil {
				return nil, err
			}
		}
		itemId, itemName = lot.ID, lot.MaterialName

	case StockClassProductStore:
		store, err := l.lockStore(m)
		if err != nil && !utils.IsNotFound(err) {
			return nil, err
		}
		if err == nil {
			if err := l.tx.Model(store).Update("quantity", store.Quantity+int(m.Quantity.IntPart())).Error; err != nil {
				return nil, err
			}
		} else {
			if m.ItemId > 0 {
				return nil, utils.NotFound("store item %d not found", m.ItemId)
			}
			store = &ProductStore{DoorName: strings.TrimSpace(m.Name), Description: strings.TrimSpace(m.Description), Quantity: int(m.Quantity.IntPart())}
			if err := l.tx.Create(store).Error; err != nil {
				return nil, err
			}
		}
		itemId, itemName = store.ID, store.DoorName

	case StockClassProduct:
		var product Product
		if err := l.locked().First(&product, m.ItemId).Error; err != nil {
			return nil, utils.NotFoundOr(err, "product")
		}
		if err := l.tx.Model(&product).Update("quantity", product.Quantity+int(m.Quantity.IntPart())).Error; err != nil {
			return nil, err
		}
		itemId, itemName = product.ID, product.Title

	case StockClassTool:
		var tool Tool
		if err := l.locked().First(&tool, m.ItemId).Error; err != nil {
			return nil, utils.NotFoundOr(err, "tool")
		}
		if err := l.tx.Model(&tool).Update("quantity_available", tool.QuantityAvailable+int(m.Quantity.IntPart())).Error; err != nil {
			return nil, err
		}
		itemId, itemName = tool.ID, tool.Name
	}

	return l.appendLog(m, itemId, itemName, m.Quantity)
}

// Debit removes stock after re-checking availability on locked rows.
// It fails with InsufficientStock and changes nothing when on-hand < quantity.
func (l StockLedger) Debit(m StockMovement) (*InventoryLog, error) {
	if err := validateMovement(m); err != nil {
		return nil, err
	}
	if m.Type == "" {
		m.Type = InventoryLogTypeRelease
	}

	var itemId int
	var itemName string
	switch m.Class {
	case StockClassRawMaterial:
		var lots []RawMaterialStock
		if err := l.locked().
			Where("LOWER(material_name) = ?", normalizeMaterialName(m.Name)).
			Order("id ASC").
			Find(&lots).Error; err != nil {
			return nil, err
		}
		if len(lots) == 0 {
			return nil, utils.InsufficientStock("material '%s' not found in stock", m.Name)
		}
		draws, err := planLotConsumption(lots, m.Quantity)
		if err != nil {
			return nil, err
		}
		for _, d := range draws {
			if d.Exhausts {
				if err := l.tx.Delete(&RawMaterialStock{}, d.LotId).Error; err != nil {
					return nil, err
				}
				continue
			}
			if err := l.tx.Model(&RawMaterialStock{}).Where("id = ?", d.LotId).Update("quantity", d.Remaining).Error; err != nil {
				return nil, err
			}
		}
		itemId, itemName = survivingLotId(lots, draws), lots[0].MaterialName

	case StockClassProductStore:
		store, err := l.lockStore(m)
		if err != nil {
			if utils.IsNotFound(err) {
				return nil, utils.InsufficientStock("door '%s' not found in store", storeLabel(m))
			}
			return nil, err
		}
		qty := int(m.Quantity.IntPart())
		if store.Quantity < qty {
			return nil, utils.InsufficientStock("insufficient store stock for '%s'. Requested: %d, Available: %d", store.DoorName, qty, store.Quantity)
		}
		if store.Quantity == qty {
			if err := l.tx.Delete(store).Error; err != nil {
				return nil, err
			}
		} else if err := l.tx.Model(store).Update("quantity", store.Quantity-qty).Error; err != nil {
			return nil, err
		}
		itemId, itemName = store.ID, store.DoorName

	case StockClassProduct:
		var product Product
		if err := l.locked().First(&product, m.ItemId).Error; err != nil {
			return nil, utils.NotFoundOr(err, "product")
		}
		qty := int(m.Quantity.IntPart())
		if product.Quantity < qty {
			return nil, utils.InsufficientStock("not enough %s in stock. Requested: %d, Available: %d", product.Title, qty, product.Quantity)
		}
		if err := l.tx.Model(&product).Update("quantity", product.Quantity-qty).Error; err != nil {
			return nil, err
		}
		itemId, itemName = product.ID, product.Title

	case StockClassTool:
		var tool Tool
		if err := l.locked().First(&tool, m.ItemId).Error; err != nil {
			return nil, utils.NotFoundOr(err, "tool")
		}
		qty := int(m.Quantity.IntPart())
		if tool.QuantityAvailable < qty {
			return nil, utils.InsufficientStock("not enough %s in inventory. Requested: %d, Available: %d", tool.Name, qty, tool.QuantityAvailable)
		}
		if err := l.tx.Model(&tool).Update("quantity_available", tool.QuantityAvailable-qty).Error; err != nil {
			return nil, err
		}
		itemId, itemName = tool.ID, tool.Name
	}

	return l.appendLog(m, itemId, itemName, m.Quantity.Neg())
}

// Available returns the current on-hand quantity for the movement's item. Missing items report zero.
func (l StockLedger) Available(m StockMovement) (decimal.Decimal, error) {
	switch m.Class {
	case StockClassRawMaterial:
		var lots []RawMaterialStock
		if err := l.tx.Where("LOWER(material_name) = ?", normalizeMaterialName(m.Name)).Find(&lots).Error; err != nil {
			return decimal.Zero, err
		}
		total := decimal.Zero
		for _, lot := range lots {
			total = total.Add(lot.Quantity)
		}
		return total, nil
	case StockClassProductStore:
		var store ProductStore
		q := l.tx
		if m.ItemId > 0 {
			q = q.Where("id = ?", m.ItemId)
		} else {
			q = q.Where("door_name = ? AND description = ?", strings.TrimSpace(m.Name), strings.TrimSpace(m.Description))
		}
		if err := q.Take(&store).Error; err != nil {
			if utils.IsNotFound(err) {
				return decimal.Zero, nil
			}
			return decimal.Zero, err
		}
		return decimal.NewFromInt(int64(store.Quantity)), nil
	case StockClassProduct:
		var product Product
		if err := l.tx.First(&product, m.ItemId).Error; err != nil {
			if utils.IsNotFound(err) {
				return decimal.Zero, nil
			}
			return decimal.Zero, err
		}
		return decimal.NewFromInt(int64(product.Quantity)), nil
	case StockClassTool:
		var tool Tool
		if err := l.tx.First(&tool, m.ItemId).Error; err != nil {
			if utils.IsNotFound(err) {
				return decimal.Zero, nil
			}
			return decimal.Zero, err
		}
		return decimal.NewFromInt(int64(tool.QuantityAvailable)), nil
	}
	return decimal.Zero, utils.InvalidInput("unknown stock class %q", m.Class)
}

func storeLabel(m StockMovement) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("#%d", m.ItemId)
}

func (l StockLedger) lockStore(m StockMovement) (*ProductStore, error) {
	var store ProductStore
	q := l.locked()
	if m.ItemId > 0 {
		q = q.Where("id = ?", m.ItemId)
	} else {
		q = q.Where("door_name = ? AND description = ?", strings.TrimSpace(m.Name), strings.TrimSpace(m.Description))
	}
	if err := q.Take(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (l StockLedger) appendLog(m StockMovement, itemId int, itemName string, signed decimal.Decimal) (*InventoryLog, error) {
	entry := InventoryLog{
		StockClass:     m.Class,
		ItemId:         itemId,
		ItemName:       itemName,
		Quantity:       signed,
		Type:           m.Type,
		ReferenceType:  m.ReferenceType,
		ReferenceId:    m.ReferenceId,
		RelatedOrderId: m.RelatedOrderId,
	}
	if err := l.tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// survivingLotId is the first lot still holding stock after draws, or 0 once the material is used up.
// Raw material debits are logged against it so the log never points at a deleted lot.
func survivingLotId(lots []RawMaterialStock, draws []lotDraw) int {
	exhausted := make(map[int]bool, len(draws))
	for _, d := range draws {
		if d.Exhausts {
			exhausted[d.LotId] = true
		}
	}
	for _, lot := range lots {
		if exhausted[lot.ID] || !lot.Quantity.IsPositive() {
			continue
		}
		return lot.ID
	}
	return 0
}

// lotDraw is how much one lot gives up to satisfy a raw material debit.
type lotDraw struct {
	LotId     int
	Take      decimal.Decimal
	Remaining decimal.Decimal
	Exhausts  bool
}

// planLotConsumption consumes lots in the given (insertion) order until qty is met.
// Fully consumed lots are marked Exhausts; only the final lot can be left with a remainder.
func planLotConsumption(lots []RawMaterialStock, qty decimal.Decimal) ([]lotDraw, error) {
	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(lot.Quantity)
	}
	if total.LessThan(qty) {
		name := ""
		if len(lots) > 0 {
			name = lots[0].MaterialName
		}
		return nil, utils.InsufficientStock("insufficient stock for '%s'. Requested: %s, Available: %s", name, qty.String(), total.String())
	}

	remaining := qty
	var draws []lotDraw
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		if !lot.Quantity.IsPositive() {
			continue
		}
		take := decimal.Min(lot.Quantity, remaining)
		left := lot.Quantity.Sub(take)
		draws = append(draws, lotDraw{
			LotId:     lot.ID,
			Take:      take,
			Remaining: left,
			Exhausts:  left.IsZero(),
		})
		remaining = remaining.Sub(take)
	}
	return draws, nil
}
