package audit

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odpem/drims/pkg/authz"
)

// Feature gating the audit trail.
const Feature = "user_management"

// Router creates a chi.Router for the audit API.
func Router(store *Store, authorizer authz.Authorizer, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireFeature(authorizer, Feature))
	r.Get("/events", ListEventsHandler(store, logger))
	r.Get("/events/{eventId}", GetEventHandler(store, logger))
	return r
}
