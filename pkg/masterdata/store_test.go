package masterdata

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
)

var today = time.Date(2024, 10, 22, 15, 4, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(dbtest.Open(t))
	s.now = func() time.Time { return today }
	return s
}

func categoryID(t *testing.T, s *Store, code string) int64 {
	t.Helper()
	var c models.ItemCategory
	require.NoError(t, s.db.Where("category_code = ?", code).First(&c).Error)
	return c.CategoryID
}

func newEvent(t *testing.T, s *Store, name, typ string, start time.Time) *models.Event {
	t.Helper()
	ev, err := s.CreateEvent(context.Background(), &EventInput{
		EventType: typ,
		StartDate: start,
		EventName: name,
		EventDesc: name + " response",
	}, "dg1")
	require.NoError(t, err)
	return ev
}

func itemInput(t *testing.T, s *Store, code, name, sku string) *ItemInput {
	t.Helper()
	return &ItemInput{
		ItemCode:       code,
		ItemName:       name,
		SKUCode:        sku,
		CategoryID:     categoryID(t, s, "FOOD"),
		ReorderQty:     decimal.NewFromInt(50),
		DefaultUOMCode: "EACH",
	}
}

func newItem(t *testing.T, s *Store, code, name, sku string) *models.Item {
	t.Helper()
	it, err := s.CreateItem(context.Background(), itemInput(t, s, code, name, sku), "lm1")
	require.NoError(t, err)
	return it
}

func newWarehouse(t *testing.T, s *Store, name string) *models.Warehouse {
	t.Helper()
	wh, err := s.CreateWarehouse(context.Background(), &WarehouseInput{
		WarehouseName: name,
		WarehouseType: "MAIN-HUB",
		ContactInput:  ContactInput{ParishCode: "01"},
	}, "lm1")
	require.NoError(t, err)
	return wh
}

// requireValidation asserts err is a client error with the given code.
func requireValidation(t *testing.T, err error, code string) *httpio.ValidationError {
	t.Helper()
	var verr *httpio.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, code, verr.Code)
	return verr
}

func TestStatusFilter_Unknown(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListItems(context.Background(), ListOptions{Status: "retired"})
	requireValidation(t, err, httpio.CodeInvalidPayload)
}

func TestList_BadFilter(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListWarehouses(context.Background(), ListOptions{Filter: "custodian_name = 'X'"})
	require.Error(t, err)
}
