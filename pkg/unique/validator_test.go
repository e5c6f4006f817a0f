package unique

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/pkg/record"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Warehouse{}, &models.Item{}, &models.Inventory{}, &models.UnitOfMeasure{}))
	return db
}

func createWarehouse(t *testing.T, db *gorm.DB, name string) *models.Warehouse {
	t.Helper()
	w := &models.Warehouse{WarehouseName: name, WarehouseType: "MAIN-HUB", StatusCode: "A"}
	require.NoError(t, (&record.Guard{}).Create(context.Background(), db, w, "tester"))
	return w
}

func TestField_DuplicateOnCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createWarehouse(t, db, "KINGSTON CENTRAL")

	res, err := New(db).WarehouseName(ctx, "KINGSTON CENTRAL", 0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, `Warehouse name "KINGSTON CENTRAL" is already in use. Please use a different value.`, res.Message)

	res, err = New(db).WarehouseName(ctx, "MONTEGO BAY", 0)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Message)
}

func TestField_EditingOwnValue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	w := createWarehouse(t, db, "KINGSTON CENTRAL")
	other := createWarehouse(t, db, "SPANISH TOWN")

	res, err := New(db).WarehouseName(ctx, "KINGSTON CENTRAL", w.WarehouseID)
	require.NoError(t, err)
	assert.True(t, res.Valid, "a record does not conflict with itself")

	res, err = New(db).WarehouseName(ctx, "KINGSTON CENTRAL", other.WarehouseID)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestField_EmptyAndUnknown(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createWarehouse(t, db, "KINGSTON CENTRAL")
	v := New(db)

	res, err := v.Field(ctx, &models.Warehouse{}, "warehouse_name", "", nil, "")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.Field(ctx, &models.Warehouse{}, "warehouse_name", nil, nil, "")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.Field(ctx, &models.Warehouse{}, "no_such_column", "KINGSTON CENTRAL", nil, "")
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestField_DefaultFriendlyName(t *testing.T) {
	db := newTestDB(t)
	createWarehouse(t, db, "KINGSTON CENTRAL")

	res, err := New(db).Field(context.Background(), &models.Warehouse{}, "warehouse_name", "KINGSTON CENTRAL", nil, "")
	require.NoError(t, err)
	assert.Equal(t, `Warehouse Name "KINGSTON CENTRAL" is already in use. Please use a different value.`, res.Message)
}

func TestField_StringPrimaryKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, (&record.Guard{}).Create(ctx, db, &models.UnitOfMeasure{UOMCode: "EACH", UOMDesc: "Each", StatusCode: "A"}, "tester"))

	res, err := New(db).UOMCode(ctx, "EACH")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, `UOM code "EACH"`)
}

func TestComposite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	g := &record.Guard{}
	require.NoError(t, g.Create(ctx, db, &models.Inventory{
		WarehouseID: 1, ItemID: 10, UOMCode: "EACH", StatusCode: "A",
		UsableQty: decimal.NewFromInt(5),
	}, "tester"))
	require.NoError(t, g.Create(ctx, db, &models.Inventory{
		WarehouseID: 2, ItemID: 20, UOMCode: "EACH", StatusCode: "A",
	}, "tester"))
	v := New(db)

	res, err := v.InventoryLine(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This combination of Warehouse + Item already exists. Please use different values.", res.Message)

	// Each value alone matches some row, but not together.
	res, err = v.InventoryLine(ctx, 1, 20, 0)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestComposite_SkipsNilAndUnknown(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createWarehouse(t, db, "KINGSTON CENTRAL")
	v := New(db)

	res, err := v.Composite(ctx, &models.Warehouse{}, []FieldValue{
		{Field: "warehouse_name", Value: "KINGSTON CENTRAL"},
		{Field: "parish_code", Value: nil},
		{Field: "bogus", Value: "x"},
	}, nil)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "This combination of Warehouse Name + Parish Code + Bogus already exists. Please use different values.", res.Message)

	res, err = v.Composite(ctx, &models.Warehouse{}, []FieldValue{{Field: "bogus", Value: "x"}}, nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.Composite(ctx, &models.Warehouse{}, nil, nil)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestItemChecksInOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, (&record.Guard{}).Create(ctx, db, &models.Item{
		ItemCode: "WTR-01", ItemName: "BOTTLED WATER", SKUCode: "SKU-1",
		CategoryID: 1, DefaultUOMCode: "EACH", StatusCode: "A",
	}, "tester"))
	v := New(db)

	res, err := v.Item(ctx, "WTR-02", "BOTTLED WATER", "SKU-1", 0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "Item name")

	res, err = v.Item(ctx, "WTR-02", "WATER JUG", "SKU-2", 0)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestTxSeesUncommittedRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	v := New(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		createWarehouse(t, tx, "OCHO RIOS")
		res, err := v.Tx(tx).WarehouseName(ctx, "OCHO RIOS", 0)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		return nil
	})
	require.NoError(t, err)
}

func TestFriendlyName(t *testing.T) {
	assert.Equal(t, "Warehouse Name", FriendlyName("warehouse_name"))
	assert.Equal(t, "Sku Code", FriendlyName("sku_code"))
	assert.Equal(t, "Code", FriendlyName("code"))
}
