// Package stock tracks what each warehouse holds: intake of received goods,
// the stock list, and transfers between warehouses.
//
// Inventory rows are shared by intake, transfers and package allocation, so
// every change to one is a version-guarded write against the version read in
// the same transaction. A concurrent writer makes the operation fail stale
// instead of silently losing a quantity.
package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/status"
	"github.com/odpem/drims/pkg/unique"
)

// Store provides database operations for stock.
type Store struct {
	db     *gorm.DB
	guard  record.Guard
	unique *unique.Validator
	now    func() time.Time
	loc    *time.Location
}

// NewStore creates a new Store.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{
		db:     gdb,
		unique: unique.New(gdb),
		now:    func() time.Time { return time.Now().UTC() },
		loc:    time.UTC,
	}
}

// InLocation sets the time zone that decides the default transfer date.
func (s *Store) InLocation(loc *time.Location) *Store {
	if loc != nil {
		s.loc = loc
	}
	return s
}

func (s *Store) today() time.Time {
	t := s.now().In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Line is an inventory row with the names a stock list shows.
type Line struct {
	models.Inventory
	ItemName      string `gorm:"column:item_name;->" json:"item_name"`
	SKUCode       string `gorm:"column:sku_code;->" json:"sku_code"`
	WarehouseName string `gorm:"column:warehouse_name;->" json:"warehouse_name"`
}

var lineFields = filter.Fields{
	"inventory_id":   "inventory.inventory_id",
	"warehouse_id":   "inventory.warehouse_id",
	"warehouse_name": "warehouse.warehouse_name",
	"item_id":        "inventory.item_id",
	"item_name":      "item.item_name",
	"sku_code":       "item.sku_code",
	"usable_qty":     "inventory.usable_qty",
	"reserved_qty":   "inventory.reserved_qty",
	"uom_code":       "inventory.uom_code",
}

// ListInventory returns available stock ordered by warehouse and item name.
// A zero warehouseID lists every warehouse.
func (s *Store) ListInventory(ctx context.Context, warehouseID int64, raw string) ([]Line, error) {
	q := s.db.Table("inventory").
		Select("inventory.*, item.item_name, item.sku_code, warehouse.warehouse_name").
		Joins("JOIN item ON item.item_id = inventory.item_id").
		Joins("JOIN warehouse ON warehouse.warehouse_id = inventory.warehouse_id").
		Where("inventory.status_code = ?", status.InventoryAvailable)
	if warehouseID != 0 {
		q = q.Where("inventory.warehouse_id = ?", warehouseID)
	}
	return repo.List[Line](ctx, q, raw, lineFields, "warehouse.warehouse_name, item.item_name")
}

// GetInventory returns one inventory row.
func (s *Store) GetInventory(ctx context.Context, id int64) (*models.Inventory, error) {
	return repo.Get[models.Inventory](ctx, s.db, id)
}

// IntakeInput records goods received into a warehouse.
type IntakeInput struct {
	WarehouseID  int64           `json:"warehouse_id" validate:"required,gt=0"`
	ItemID       int64           `json:"item_id" validate:"required,gt=0"`
	Qty          decimal.Decimal `json:"qty"`
	UOMCode      string          `json:"uom_code" validate:"omitempty,max=25"`
	CommentsText string          `json:"comments_text"`
	// VersionNbr is the version of the stock line the clerk was shown, if
	// any. When set, an intake against a line that has since changed fails
	// stale.
	VersionNbr int `json:"version_nbr" validate:"omitempty,gte=1"`
}

// Receive adds in.Qty to the warehouse's usable stock of the item, opening
// the stock line on first receipt.
func (s *Store) Receive(ctx context.Context, in *IntakeInput, actor string) (*models.Inventory, error) {
	if !in.Qty.IsPositive() {
		return nil, httpio.Invalid("Quantity must be greater than zero.")
	}
	var out *models.Inventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wh, err := activeWarehouse(ctx, tx, in.WarehouseID)
		if err != nil {
			return err
		}
		it, err := activeItem(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		uom := strings.ToUpper(strings.TrimSpace(in.UOMCode))
		if uom == "" {
			uom = it.DefaultUOMCode
		} else if found, err := repo.Exists(ctx, tx, &models.UnitOfMeasure{}, "uom_code = ?", uom); err != nil {
			return fmt.Errorf("look up unit of measure: %w", err)
		} else if !found {
			return httpio.Invalid("Unknown unit of measure %q.", uom)
		}
		out, err = s.receive(ctx, tx, wh, it, receipt{
			qty:      in.Qty,
			uom:      uom,
			note:     strings.TrimSpace(in.CommentsText),
			expected: in.VersionNbr,
		}, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type receipt struct {
	qty  decimal.Decimal
	uom  string
	note string
	// expected, when non-zero, is the version the caller holds for an
	// existing line.
	expected int
}

// receive puts a receipt of it into wh.
func (s *Store) receive(ctx context.Context, tx *gorm.DB, wh *models.Warehouse, it *models.Item, rc receipt, actor string) (*models.Inventory, error) {
	res, err := s.unique.Tx(tx).InventoryLine(ctx, wh.WarehouseID, it.ItemID, 0)
	if err != nil {
		return nil, err
	}
	if res.Valid {
		inv := &models.Inventory{
			WarehouseID:  wh.WarehouseID,
			ItemID:       it.ItemID,
			UsableQty:    rc.qty,
			ReservedQty:  decimal.Zero,
			DefectiveQty: decimal.Zero,
			ExpiredQty:   decimal.Zero,
			UOMCode:      rc.uom,
			StatusCode:   status.InventoryAvailable,
			CommentsText: rc.note,
		}
		if err := s.guard.Create(ctx, tx, inv, actor); err != nil {
			return nil, db.Translate(err)
		}
		return inv, nil
	}

	inv, err := findLine(ctx, tx, wh.WarehouseID, it.ItemID)
	if err != nil {
		return nil, err
	}
	expected := rc.expected
	if expected == 0 {
		expected = inv.VersionNbr
	}
	if err := s.guard.Check(ctx, tx, inv, expected); err != nil {
		return nil, err
	}
	if inv.UOMCode != rc.uom {
		return nil, httpio.Invalid("%s is stocked in %s at %s, not %s.", it.ItemName, inv.UOMCode, wh.WarehouseName, rc.uom)
	}
	inv.UsableQty = inv.UsableQty.Add(rc.qty)
	if rc.note != "" {
		inv.CommentsText = rc.note
	}
	inv.StatusCode = status.InventoryAvailable
	if err := s.guard.Update(ctx, tx, inv, expected, actor); err != nil {
		return nil, db.Translate(err)
	}
	return inv, nil
}

func findLine(ctx context.Context, tx *gorm.DB, warehouseID, itemID int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := tx.WithContext(ctx).
		Where("warehouse_id = ? AND item_id = ?", warehouseID, itemID).
		First(&inv).Error
	if err != nil {
		return nil, db.Translate(err)
	}
	return &inv, nil
}

func activeWarehouse(ctx context.Context, tx *gorm.DB, id int64) (*models.Warehouse, error) {
	wh, err := repo.Get[models.Warehouse](ctx, tx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpio.Invalid("Unknown warehouse %d.", id)
	}
	if err != nil {
		return nil, fmt.Errorf("look up warehouse: %w", err)
	}
	if wh.StatusCode != status.Active {
		return nil, httpio.Invalid("Warehouse %q is inactive.", wh.WarehouseName)
	}
	return wh, nil
}

func activeItem(ctx context.Context, tx *gorm.DB, id int64) (*models.Item, error) {
	it, err := repo.Get[models.Item](ctx, tx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpio.Invalid("Unknown item %d.", id)
	}
	if err != nil {
		return nil, fmt.Errorf("look up item: %w", err)
	}
	if it.StatusCode != status.Active {
		return nil, httpio.Invalid("Item %q is inactive.", it.ItemName)
	}
	return it, nil
}
