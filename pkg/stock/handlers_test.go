package stock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/pkg/authz"
)

func serveAs(t *testing.T, h http.Handler, method, path, body string, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if roles != nil {
		req = req.WithContext(authz.WithIdentity(req.Context(), authz.Identity{User: "tester", Roles: roles}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Mount("/api/v1", Router(f.s, authz.NewFeatureAuthorizer(nil), nil))
	return r
}

func TestIntakeAndTransferOverHTTP(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	body := fmt.Sprintf(`{"warehouse_id":%d,"item_id":%d,"qty":"48"}`, f.main.WarehouseID, f.water.ItemID)
	rec := serveAs(t, h, http.MethodPost, "/api/v1/inventory/intake", body, "INVENTORY_CLERK")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv models.Inventory
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&inv))
	assert.Equal(t, "tester", inv.CreateByID)

	body = fmt.Sprintf(`{"from_warehouse_id":%d,"to_warehouse_id":%d,"item_id":%d,"item_qty":"8"}`,
		f.main.WarehouseID, f.sub.WarehouseID, f.water.ItemID)
	rec = serveAs(t, h, http.MethodPost, "/api/v1/transfers", body, "LO")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tr models.Transfer
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tr))

	rec = serveAs(t, h, http.MethodPost, fmt.Sprintf("/api/v1/transfers/%d/verify", tr.TransferID), `{"version_nbr":1}`, "LM")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serveAs(t, h, http.MethodGet, fmt.Sprintf("/api/v1/inventory?warehouse_id=%d", f.sub.WarehouseID), "", "DG")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Inventory []Line `json:"inventory"`
		TotalSize int    `json:"totalSize"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Equal(t, 1, list.TotalSize)
	assert.Equal(t, "WATER 1L", list.Inventory[0].ItemName)
}

func TestTransferValidationOverHTTP(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	body := fmt.Sprintf(`{"from_warehouse_id":%d,"to_warehouse_id":%d,"item_id":%d,"item_qty":"1"}`,
		f.main.WarehouseID, f.main.WarehouseID, f.water.ItemID)
	rec := serveAs(t, h, http.MethodPost, "/api/v1/transfers", body, "LM")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var eb httpio.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&eb))
	assert.Contains(t, eb.Fields, "to_warehouse_id")

	rec = serveAs(t, h, http.MethodGet, "/api/v1/inventory?warehouse_id=main", "", "LM")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockRoutesAreGated(t *testing.T) {
	f := newFixture(t)
	h := newRouter(f)

	tests := []struct {
		method, path string
		role         string
		want         int
	}{
		{http.MethodGet, "/api/v1/inventory", "PEOD", http.StatusOK},
		{http.MethodGet, "/api/v1/inventory", "AGENCY_USER", http.StatusForbidden},
		{http.MethodPost, "/api/v1/inventory/intake", "DG", http.StatusForbidden},
		{http.MethodGet, "/api/v1/transfers", "INVENTORY_CLERK", http.StatusOK},
		{http.MethodGet, "/api/v1/transfers", "DG", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" "+tt.role, func(t *testing.T) {
			rec := serveAs(t, h, tt.method, tt.path, "", tt.role)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
