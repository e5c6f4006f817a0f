package relief

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpem/drims/internal/dbtest"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/masterdata"
	"github.com/odpem/drims/pkg/stock"
)

var today = time.Date(2024, 10, 22, 15, 4, 0, 0, time.UTC)

type fixture struct {
	s      *Store
	md     *masterdata.Store
	stock  *stock.Store
	agency *models.Agency
	main   *models.Warehouse
	sub    *models.Warehouse
	water  *models.Item
	rice   *models.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	gdb := dbtest.Open(t)
	s := NewStore(gdb)
	s.now = func() time.Time { return today }
	f := &fixture{s: s, md: masterdata.NewStore(gdb), stock: stock.NewStore(gdb)}

	var err error
	f.agency, err = f.md.CreateAgency(ctx, &masterdata.AgencyInput{
		AgencyName:   "May Pen Shelter",
		AgencyType:   "SHELTER",
		Address1Text: "12 Church Street",
		ParishCode:   "13",
		ContactName:  "M Campbell",
		PhoneNo:      "876-986-2222",
	}, "admin")
	require.NoError(t, err)

	for _, wh := range []struct {
		dst  **models.Warehouse
		name string
	}{{&f.main, "Marcus Garvey Drive"}, {&f.sub, "Montego Bay"}} {
		*wh.dst, err = f.md.CreateWarehouse(ctx, &masterdata.WarehouseInput{WarehouseName: wh.name, WarehouseType: "MAIN-HUB"}, "lm1")
		require.NoError(t, err)
	}

	var cat models.ItemCategory
	require.NoError(t, gdb.Where("category_code = ?", "FOOD").First(&cat).Error)
	for _, it := range []struct {
		dst             **models.Item
		code, name, sku string
	}{{&f.water, "WTR-1L", "Water 1L", "SKU-0001"}, {&f.rice, "RICE-5", "Rice 5kg", "SKU-0002"}} {
		*it.dst, err = f.md.CreateItem(ctx, &masterdata.ItemInput{
			ItemCode: it.code, ItemName: it.name, SKUCode: it.sku,
			CategoryID: cat.CategoryID, ReorderQty: decimal.NewFromInt(10), DefaultUOMCode: "EACH",
		}, "lm1")
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) stockUp(t *testing.T, wh *models.Warehouse, it *models.Item, qty int64) *models.Inventory {
	t.Helper()
	inv, err := f.stock.Receive(context.Background(), &stock.IntakeInput{
		WarehouseID: wh.WarehouseID, ItemID: it.ItemID, Qty: decimal.NewFromInt(qty),
	}, "clerk1")
	require.NoError(t, err)
	return inv
}

func line(it *models.Item, qty int64) RequestLineInput {
	return RequestLineInput{ItemID: it.ItemID, RequestQty: decimalOf(qty)}
}

func (f *fixture) draft(t *testing.T, lines ...RequestLineInput) *models.ReliefRequest {
	t.Helper()
	req, err := f.s.CreateRequest(context.Background(), &RequestInput{
		AgencyID:   f.agency.AgencyID,
		UrgencyInd: "H",
		Items:      lines,
	}, "agency1")
	require.NoError(t, err)
	return req
}

// approved returns a request that has been submitted and approved.
func (f *fixture) approved(t *testing.T, lines ...RequestLineInput) *models.ReliefRequest {
	t.Helper()
	ctx := context.Background()
	req := f.draft(t, lines...)
	_, err := f.s.SubmitRequest(ctx, req.ReliefRqstID, &repo.VersionInput{VersionNbr: 1}, "agency1")
	require.NoError(t, err)
	got, err := f.s.Decide(ctx, req.ReliefRqstID, &DecisionInput{VersionInput: repo.VersionInput{VersionNbr: 2}, Decision: Approve}, "dg1")
	require.NoError(t, err)
	return got
}

func requireValidation(t *testing.T, err error, code string) *httpio.ValidationError {
	t.Helper()
	var verr *httpio.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, code, verr.Code)
	return verr
}

func qtyEqual(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "want %d, got %s", want, got)
}

func decimalOf(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
