package masterdata

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/pkg/cache"
	"github.com/odpem/drims/pkg/status"
)

func listOptions(r *http.Request) ListOptions {
	q := r.URL.Query()
	return ListOptions{Status: q.Get("status"), Filter: q.Get("filter")}
}

func listOf[T any](logger *slog.Logger, key string, fn func(context.Context, ListOptions) ([]T, error)) http.HandlerFunc {
	return httpio.ListHandler(logger, key, func(r *http.Request) ([]T, error) {
		return fn(r.Context(), listOptions(r))
	})
}

// ListEventsHandler handles GET /events.
// Query params: status (active|closed|all), filter
func ListEventsHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return listOf(logger, "events", s.ListEvents)
}

// GetEventHandler handles GET /events/{eventId}.
func GetEventHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "eventId", s.GetEvent)
}

// CreateEventHandler handles POST /events.
func CreateEventHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateEvent)
}

// UpdateEventHandler handles PUT /events/{eventId}.
func UpdateEventHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "eventId", s.UpdateEvent)
}

// CloseEventHandler handles POST /events/{eventId}/close.
func CloseEventHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "eventId", s.CloseEvent)
}

// ListItemsHandler handles GET /items.
// Query params: status (active|inactive|all), filter
func ListItemsHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return listOf(logger, "items", s.ListItems)
}

// GetItemHandler handles GET /items/{itemId}.
func GetItemHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "itemId", s.GetItem)
}

// CreateItemHandler handles POST /items.
func CreateItemHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateItem)
}

// UpdateItemHandler handles PUT /items/{itemId}.
func UpdateItemHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "itemId", s.UpdateItem)
}

// ItemStatusHandler handles POST /items/{itemId}/activate and /deactivate.
func ItemStatusHandler(s *Store, code string, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "itemId", func(ctx context.Context, id int64, in *VersionInput, actor string) (*models.Item, error) {
		return s.SetItemStatus(ctx, id, code, in, actor)
	})
}

// ListWarehousesHandler handles GET /warehouses.
// Query params: status (active|inactive|all), filter
func ListWarehousesHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return listOf(logger, "warehouses", s.ListWarehouses)
}

// GetWarehouseHandler handles GET /warehouses/{warehouseId}.
func GetWarehouseHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "warehouseId", s.GetWarehouse)
}

// CreateWarehouseHandler handles POST /warehouses.
func CreateWarehouseHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateWarehouse)
}

// UpdateWarehouseHandler handles PUT /warehouses/{warehouseId}.
func UpdateWarehouseHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "warehouseId", s.UpdateWarehouse)
}

// DeactivateWarehouseHandler handles POST /warehouses/{warehouseId}/deactivate.
func DeactivateWarehouseHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "warehouseId", s.DeactivateWarehouse)
}

// ListAgenciesHandler handles GET /agencies.
func ListAgenciesHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return listOf(logger, "agencies", s.ListAgencies)
}

// GetAgencyHandler handles GET /agencies/{agencyId}.
func GetAgencyHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "agencyId", s.GetAgency)
}

// CreateAgencyHandler handles POST /agencies.
func CreateAgencyHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateAgency)
}

// UpdateAgencyHandler handles PUT /agencies/{agencyId}.
func UpdateAgencyHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "agencyId", s.UpdateAgency)
}

// ListCustodiansHandler handles GET /custodians.
func ListCustodiansHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return listOf(logger, "custodians", s.ListCustodians)
}

// CreateCustodianHandler handles POST /custodians.
func CreateCustodianHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateCustodian)
}

// UpdateCustodianHandler handles PUT /custodians/{custodianId}.
func UpdateCustodianHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "custodianId", s.UpdateCustodian)
}

// ListDonorsHandler handles GET /donors.
func ListDonorsHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return listOf(logger, "donors", s.ListDonors)
}

// CreateDonorHandler handles POST /donors.
func CreateDonorHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateDonor)
}

// UpdateDonorHandler handles PUT /donors/{donorId}.
func UpdateDonorHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "donorId", s.UpdateDonor)
}

// ReferenceHandler handles GET /reference/{parishes,categories,uoms}.
func ReferenceHandler[T any](logger *slog.Logger, key string, fn func(context.Context) ([]T, error)) http.HandlerFunc {
	return httpio.ListHandler(logger, key, func(r *http.Request) ([]T, error) {
		return fn(r.Context())
	})
}

// CreateCategoryHandler handles POST /reference/categories and drops the
// cached category list.
func CreateCategoryHandler(s *Store, refCache *cache.Manager, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, func(ctx context.Context, in *CategoryInput, actor string) (*models.ItemCategory, error) {
		c, err := s.CreateCategory(ctx, in, actor)
		if err == nil {
			refCache.InvalidateReference(RefCategories)
		}
		return c, err
	})
}

// CreateUOMHandler handles POST /reference/uoms and drops the cached unit
// list.
func CreateUOMHandler(s *Store, refCache *cache.Manager, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, func(ctx context.Context, in *UOMInput, actor string) (*models.UnitOfMeasure, error) {
		u, err := s.CreateUOM(ctx, in, actor)
		if err == nil {
			refCache.InvalidateReference(RefUOMs)
		}
		return u, err
	})
}

// itemStatus maps the action in /items/{itemId}/{action} to a status code.
var itemStatus = map[string]string{
	"activate":   status.Active,
	"deactivate": status.Inactive,
}
