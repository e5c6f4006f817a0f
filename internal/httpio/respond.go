// Package httpio holds the JSON request and response helpers shared by the
// DRIMS handlers.
package httpio

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/status"
)

// Error codes written in the "error" field of a failure body.
const (
	CodeInvalidPayload      = "invalid_payload"
	CodeValidation          = "validation_error"
	CodeDuplicateValue      = "duplicate_value"
	CodeStaleVersion        = "stale_version"
	CodeConstraintViolation = "constraint_violation"
	CodeInvalidState        = "invalid_state"
	CodeNotFound            = "not_found"
	CodeInternal            = "internal_error"
)

// StaleMessage is shown when a guarded update lost the race.
const StaleMessage = "This record was changed by someone else. Please reload and try again."

// ErrorBody is the JSON shape of every failure response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a failure body.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

// Fail classifies err and writes the matching response. Unclassified errors
// are logged and answered with a generic 500.
func Fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, verr.Status, ErrorBody{Error: verr.Code, Message: verr.Message, Fields: verr.Fields})
	case errors.Is(err, filter.ErrInvalid):
		WriteError(w, http.StatusBadRequest, CodeInvalidPayload, "Invalid filter: "+err.Error())
	case record.IsStale(err):
		WriteError(w, http.StatusConflict, CodeStaleVersion, StaleMessage)
	case errors.Is(err, status.ErrTransition):
		WriteError(w, http.StatusConflict, CodeInvalidState, err.Error())
	case errors.Is(err, db.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, "The requested record does not exist.")
	case errors.Is(err, db.ErrDuplicate):
		WriteError(w, http.StatusConflict, CodeConstraintViolation, "The change conflicts with an existing record.")
	default:
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred.")
	}
}
