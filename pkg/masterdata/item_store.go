package masterdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/status"
)

var itemFields = filter.Fields{
	"item_id":          "item_id",
	"item_code":        "item_code",
	"item_name":        "item_name",
	"sku_code":         "sku_code",
	"category_id":      "category_id",
	"default_uom_code": "default_uom_code",
	"can_expire_flag":  "can_expire_flag",
	"status_code":      "status_code",
}

var activeStatuses = map[string]string{
	"active":   status.Active,
	"inactive": status.Inactive,
}

// ItemInput is the editable part of a catalogue item.
type ItemInput struct {
	ItemCode       string          `json:"item_code" validate:"required,max=16"`
	ItemName       string          `json:"item_name" validate:"required,max=60"`
	SKUCode        string          `json:"sku_code" validate:"required,max=30"`
	CategoryID     int64           `json:"category_id" validate:"required,gt=0"`
	ItemDesc       string          `json:"item_desc"`
	ReorderQty     decimal.Decimal `json:"reorder_qty"`
	DefaultUOMCode string          `json:"default_uom_code" validate:"required,max=25"`
	UsageDesc      string          `json:"usage_desc"`
	StorageDesc    string          `json:"storage_desc"`
	IsBatchedFlag  bool            `json:"is_batched_flag"`
	CanExpireFlag  bool            `json:"can_expire_flag"`
}

// ItemUpdate is an edit of an existing item.
type ItemUpdate struct {
	ItemInput
	VersionInput
}

func (in *ItemInput) apply(it *models.Item) {
	it.ItemCode = upper(in.ItemCode)
	it.ItemName = upper(in.ItemName)
	it.SKUCode = upper(in.SKUCode)
	it.CategoryID = in.CategoryID
	it.ItemDesc = strings.TrimSpace(in.ItemDesc)
	it.ReorderQty = in.ReorderQty
	it.DefaultUOMCode = upper(in.DefaultUOMCode)
	it.UsageDesc = strings.TrimSpace(in.UsageDesc)
	it.StorageDesc = strings.TrimSpace(in.StorageDesc)
	it.IsBatchedFlag = in.IsBatchedFlag
	it.CanExpireFlag = in.CanExpireFlag
}

// check validates what struct tags cannot: the reorder quantity, the
// referenced category and unit, and the three unique columns.
func (s *Store) checkItem(ctx context.Context, tx *gorm.DB, it *models.Item) error {
	if !it.ReorderQty.IsPositive() {
		return httpio.Invalid("Reorder quantity must be greater than zero.")
	}
	found, err := repo.Exists(ctx, tx, &models.ItemCategory{}, "category_id = ?", it.CategoryID)
	if err != nil {
		return fmt.Errorf("look up category: %w", err)
	}
	if !found {
		return httpio.Invalid("Unknown item category %d.", it.CategoryID)
	}
	found, err = repo.Exists(ctx, tx, &models.UnitOfMeasure{}, "uom_code = ?", it.DefaultUOMCode)
	if err != nil {
		return fmt.Errorf("look up unit of measure: %w", err)
	}
	if !found {
		return httpio.Invalid("Unknown unit of measure %q.", it.DefaultUOMCode)
	}
	return repo.CheckUnique(s.unique.Tx(tx).Item(ctx, it.ItemCode, it.ItemName, it.SKUCode, it.ItemID))
}

// ListItems returns items by name. Status is active (the default), inactive
// or all.
func (s *Store) ListItems(ctx context.Context, opts ListOptions) ([]models.Item, error) {
	q, err := repo.StatusFilter(s.db.Model(&models.Item{}), opts.Status, activeStatuses, "active")
	if err != nil {
		return nil, err
	}
	return repo.List[models.Item](ctx, q, opts.Filter, itemFields, "item_name")
}

// GetItem returns one item.
func (s *Store) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return repo.Get[models.Item](ctx, s.db, id)
}

// CreateItem adds an active item to the catalogue.
func (s *Store) CreateItem(ctx context.Context, in *ItemInput, actor string) (*models.Item, error) {
	it := &models.Item{StatusCode: status.Active}
	in.apply(it)
	err := repo.Create(ctx, s.db, &s.guard, it, actor, func(tx *gorm.DB) error {
		return s.checkItem(ctx, tx, it)
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

// UpdateItem edits an item.
func (s *Store) UpdateItem(ctx context.Context, id int64, in *ItemUpdate, actor string) (*models.Item, error) {
	return repo.Edit[models.Item](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, it *models.Item) error {
		in.apply(it)
		return s.checkItem(ctx, tx, it)
	})
}

// SetItemStatus activates or deactivates an item.
func (s *Store) SetItemStatus(ctx context.Context, id int64, code string, in *VersionInput, actor string) (*models.Item, error) {
	return repo.Edit[models.Item](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, it *models.Item) error {
		if it.StatusCode == code {
			return httpio.InvalidState("Item %q is already %s.", it.ItemName, strings.ToLower(status.Label(status.KindItem, code)))
		}
		it.StatusCode = code
		return nil
	})
}
