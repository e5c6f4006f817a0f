package relief

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odpem/drims/pkg/authz"
)

// Features gating the relief workflow routes.
const (
	FeatureRequestCreation    = "relief_request_creation"
	FeatureRequestTracking    = "relief_request_tracking"
	FeatureEligibility        = "eligibility_review"
	FeaturePackagePreparation = "package_preparation"
	FeaturePackageApproval    = "package_approval"
)

// Router mounts the relief workflow API. Requests can be read by anyone who
// tracks, reviews or fills them; only their creators change them.
func Router(s *Store, authorizer authz.Authorizer, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Route("/requests", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireAnyFeature(authorizer, FeatureRequestTracking, FeatureEligibility, FeaturePackagePreparation))
			r.Get("/", ListRequestsHandler(s, logger))
			r.Get("/{requestId}", GetRequestHandler(s, logger))
		})
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireFeature(authorizer, FeatureRequestCreation))
			r.Post("/", CreateRequestHandler(s, logger))
			r.Put("/{requestId}/items", ReplaceItemsHandler(s, logger))
			r.Post("/{requestId}/submit", SubmitRequestHandler(s, logger))
			r.Post("/{requestId}/cancel", CancelRequestHandler(s, logger))
		})
	})

	r.Route("/eligibility", func(r chi.Router) {
		r.Use(authz.RequireFeature(authorizer, FeatureEligibility))
		r.Get("/pending", PendingEligibilityHandler(s, logger))
		r.Post("/{requestId}/decision", DecisionHandler(s, logger))
	})

	r.Route("/packages", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireAnyFeature(authorizer, FeaturePackagePreparation, FeaturePackageApproval))
			r.Get("/", ListPackagesHandler(s, logger))
			r.Get("/{packageId}", GetPackageHandler(s, logger))
		})
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireFeature(authorizer, FeaturePackagePreparation))
			r.Post("/", CreatePackageHandler(s, logger))
			r.Post("/{packageId}/complete", CompletePackageHandler(s, logger))
			r.Post("/{packageId}/dispatch", DispatchPackageHandler(s, logger))
		})
		r.With(authz.RequireFeature(authorizer, FeaturePackageApproval)).
			Post("/{packageId}/approve", ApprovePackageHandler(s, logger))
	})

	return r
}
