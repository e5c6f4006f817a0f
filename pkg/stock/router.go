package stock

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odpem/drims/pkg/authz"
)

// Features gating the stock routes.
const (
	FeatureView      = "inventory_view"
	FeatureIntake    = "inventory_intake"
	FeatureTransfers = "inventory_transfers"
)

// Router mounts the stock API.
func Router(s *Store, authorizer authz.Authorizer, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Route("/inventory", func(r chi.Router) {
		r.With(authz.RequireFeature(authorizer, FeatureView)).Get("/", ListInventoryHandler(s, logger))
		r.With(authz.RequireFeature(authorizer, FeatureView)).Get("/{inventoryId}", GetInventoryHandler(s, logger))
		r.With(authz.RequireFeature(authorizer, FeatureIntake)).Post("/intake", IntakeHandler(s, logger))
	})

	r.Route("/transfers", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureTransfers))
		r.Get("/", ListTransfersHandler(s, logger))
		r.Post("/", CreateTransferHandler(s, logger))
		r.Get("/{transferId}", GetTransferHandler(s, logger))
		r.Post("/{transferId}/verify", VerifyTransferHandler(s, logger))
	})

	return r
}
