package masterdata

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odpem/drims/pkg/authz"
	"github.com/odpem/drims/pkg/cache"
)

// Features gating the master data routes.
const (
	FeatureEvents     = "event_management"
	FeatureItems      = "item_catalog"
	FeatureWarehouses = "warehouse_management"
	FeatureAgencies   = "agency_management"
	FeatureCustodians = "custodian_management"
	FeatureDonors     = "donor_management"
)

// Router mounts the master data API. Each resource is gated by its feature;
// the reference lists are open to any signed-in user and served through
// refCache.
func Router(s *Store, authorizer authz.Authorizer, refCache *cache.Manager, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Route("/events", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureEvents))
		r.Get("/", ListEventsHandler(s, logger))
		r.Post("/", CreateEventHandler(s, logger))
		r.Get("/{eventId}", GetEventHandler(s, logger))
		r.Put("/{eventId}", UpdateEventHandler(s, logger))
		r.Post("/{eventId}/close", CloseEventHandler(s, logger))
	})

	r.Route("/items", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureItems))
		r.Get("/", ListItemsHandler(s, logger))
		r.Post("/", CreateItemHandler(s, logger))
		r.Get("/{itemId}", GetItemHandler(s, logger))
		r.Put("/{itemId}", UpdateItemHandler(s, logger))
		for action, code := range itemStatus {
			r.Post("/{itemId}/"+action, ItemStatusHandler(s, code, logger))
		}
	})

	r.Route("/warehouses", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureWarehouses))
		r.Get("/", ListWarehousesHandler(s, logger))
		r.Post("/", CreateWarehouseHandler(s, logger))
		r.Get("/{warehouseId}", GetWarehouseHandler(s, logger))
		r.Put("/{warehouseId}", UpdateWarehouseHandler(s, logger))
		r.Post("/{warehouseId}/deactivate", DeactivateWarehouseHandler(s, logger))
	})

	r.Route("/agencies", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureAgencies))
		r.Get("/", ListAgenciesHandler(s, logger))
		r.Post("/", CreateAgencyHandler(s, logger))
		r.Get("/{agencyId}", GetAgencyHandler(s, logger))
		r.Put("/{agencyId}", UpdateAgencyHandler(s, logger))
	})

	r.Route("/custodians", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureCustodians))
		r.Get("/", ListCustodiansHandler(s, logger))
		r.Post("/", CreateCustodianHandler(s, logger))
		r.Put("/{custodianId}", UpdateCustodianHandler(s, logger))
	})

	r.Route("/donors", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureDonors))
		r.Get("/", ListDonorsHandler(s, logger))
		r.Post("/", CreateDonorHandler(s, logger))
		r.Put("/{donorId}", UpdateDonorHandler(s, logger))
	})

	r.Route("/reference", func(r chi.Router) {
		r.Use(authz.RequireIdentity)
		r.Group(func(r chi.Router) {
			r.Use(refCache.ReferenceMiddleware())
			r.Get("/"+RefParishes, ReferenceHandler(logger, RefParishes, s.ListParishes))
			r.Get("/"+RefCategories, ReferenceHandler(logger, RefCategories, s.ListCategories))
			r.Get("/"+RefUOMs, ReferenceHandler(logger, RefUOMs, s.ListUOMs))
		})
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireFeature(authorizer, FeatureItems))
			r.Post("/"+RefCategories, CreateCategoryHandler(s, refCache, logger))
			r.Post("/"+RefUOMs, CreateUOMHandler(s, refCache, logger))
		})
	})

	return r
}
