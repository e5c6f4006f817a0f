package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
)

// ListInventoryHandler handles GET /inventory.
// Query params: warehouse_id, filter
func ListInventoryHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.ListHandler(logger, "inventory", func(r *http.Request) ([]Line, error) {
		q := r.URL.Query()
		var warehouseID int64
		if raw := q.Get("warehouse_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return nil, httpio.BadRequest("Invalid warehouse_id %q.", raw)
			}
			warehouseID = id
		}
		return s.ListInventory(r.Context(), warehouseID, q.Get("filter"))
	})
}

// GetInventoryHandler handles GET /inventory/{inventoryId}.
func GetInventoryHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "inventoryId", s.GetInventory)
}

// IntakeHandler handles POST /inventory/intake.
func IntakeHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.Receive)
}

// ListTransfersHandler handles GET /transfers.
// Query params: status (processed|verified|all), filter
func ListTransfersHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.ListHandler(logger, "transfers", func(r *http.Request) ([]models.Transfer, error) {
		q := r.URL.Query()
		return s.ListTransfers(r.Context(), repo.ListOptions{Status: q.Get("status"), Filter: q.Get("filter")})
	})
}

// GetTransferHandler handles GET /transfers/{transferId}.
func GetTransferHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.GetHandler(logger, "transferId", s.GetTransfer)
}

// CreateTransferHandler handles POST /transfers.
func CreateTransferHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.CreateHandler(logger, s.CreateTransfer)
}

// VerifyTransferHandler handles POST /transfers/{transferId}/verify.
func VerifyTransferHandler(s *Store, logger *slog.Logger) http.HandlerFunc {
	return httpio.UpdateHandler(logger, "transferId", s.VerifyTransfer)
}
