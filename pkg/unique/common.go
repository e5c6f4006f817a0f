package unique

import (
	"context"

	"github.com/odpem/drims/internal/models"
)

// Checks for the unique columns of the DRIMS master data tables. A zero
// currentID means the record is new.

func (v *Validator) WarehouseName(ctx context.Context, name string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Warehouse{}, "warehouse_name", name, currentID, "Warehouse name")
}

func (v *Validator) AgencyName(ctx context.Context, name string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Agency{}, "agency_name", name, currentID, "Agency name")
}

func (v *Validator) CustodianName(ctx context.Context, name string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Custodian{}, "custodian_name", name, currentID, "Custodian name")
}

func (v *Validator) ItemCode(ctx context.Context, code string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Item{}, "item_code", code, currentID, "Item code")
}

func (v *Validator) ItemName(ctx context.Context, name string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Item{}, "item_name", name, currentID, "Item name")
}

func (v *Validator) SKUCode(ctx context.Context, sku string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Item{}, "sku_code", sku, currentID, "SKU code")
}

func (v *Validator) DonorName(ctx context.Context, name string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Donor{}, "donor_name", name, currentID, "Donor name")
}

func (v *Validator) DonorCode(ctx context.Context, code string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.Donor{}, "donor_code", code, currentID, "Donor code")
}

func (v *Validator) CategoryCode(ctx context.Context, code string, currentID int64) (Result, error) {
	return v.Field(ctx, &models.ItemCategory{}, "category_code", code, currentID, "Category code")
}

// UOMCode checks a new unit of measure code. The code is the primary key, so
// there is no current record to exclude.
func (v *Validator) UOMCode(ctx context.Context, code string) (Result, error) {
	return v.Field(ctx, &models.UnitOfMeasure{}, "uom_code", code, nil, "UOM code")
}

// InventoryLine checks that a warehouse does not already stock the item.
func (v *Validator) InventoryLine(ctx context.Context, warehouseID, itemID, currentID int64) (Result, error) {
	return v.Composite(ctx, &models.Inventory{}, []FieldValue{
		{Field: "warehouse_id", Value: warehouseID, Friendly: "Warehouse"},
		{Field: "item_id", Value: itemID, Friendly: "Item"},
	}, currentID)
}

// Item runs the three item checks and returns the first failure.
func (v *Validator) Item(ctx context.Context, code, name, sku string, currentID int64) (Result, error) {
	for _, check := range []func() (Result, error){
		func() (Result, error) { return v.ItemCode(ctx, code, currentID) },
		func() (Result, error) { return v.ItemName(ctx, name, currentID) },
		func() (Result, error) { return v.SKUCode(ctx, sku, currentID) },
	} {
		res, err := check()
		if err != nil || !res.Valid {
			return res, err
		}
	}
	return ok, nil
}
