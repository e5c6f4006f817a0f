package relief

import (
	"log/slog"
	"net/http"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
)

func listOptions(r *http.Request) repo.ListOptions {
	q := r.URL.Query()
	return repo.ListOptions{Status: q.Get("status"), Filter: q.Get("filter")}
}

// ListRequestsHandler handles GET /requests.
// Query params: status (pending|completed|all), filter
func ListRequestsHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.ListHandler(logger, "requests", func(r *http.Request) ([]models.ReliefRequest, error) {
		return s.ListRequests(r.Context(), listOptions(r))
	})
}

// GetRequestHandler handles GET /requests/{requestId}.
func GetRequestHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "requestId", s.GetRequest)
}

// CreateRequestHandler handles POST /requests.
func CreateRequestHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateRequest)
}

// ReplaceItemsHandler handles PUT /requests/{requestId}/items.
func ReplaceItemsHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "requestId", s.ReplaceItems)
}

// SubmitRequestHandler handles POST /requests/{requestId}/submit.
func SubmitRequestHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "requestId", s.SubmitRequest)
}

// CancelRequestHandler handles POST /requests/{requestId}/cancel.
func CancelRequestHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "requestId", s.CancelRequest)
}

// PendingEligibilityHandler handles GET /eligibility/pending.
func PendingEligibilityHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.ListHandler(logger, "requests", func(r *http.Request) ([]models.ReliefRequest, error) {
		return s.ListPendingEligibility(r.Context(), r.URL.Query().Get("filter"))
	})
}

// DecisionHandler handles POST /eligibility/{requestId}/decision.
func DecisionHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "requestId", s.Decide)
}

// ListPackagesHandler handles GET /packages.
// Query params: status (processing|completed|verified|dispatched|all), filter
func ListPackagesHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.ListHandler(logger, "packages", func(r *http.Request) ([]models.ReliefPackage, error) {
		return s.ListPackages(r.Context(), listOptions(r))
	})
}

// GetPackageHandler handles GET /packages/{packageId}.
func GetPackageHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "packageId", s.GetPackage)
}

// CreatePackageHandler handles POST /packages.
func CreatePackageHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreatePackage)
}

// CompletePackageHandler handles POST /packages/{packageId}/complete.
func CompletePackageHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "packageId", s.CompletePackage)
}

// ApprovePackageHandler handles POST /packages/{packageId}/approve.
func ApprovePackageHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "packageId", s.ApprovePackage)
}

// DispatchPackageHandler handles POST /packages/{packageId}/dispatch.
func DispatchPackageHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "packageId", s.DispatchPackage)
}
