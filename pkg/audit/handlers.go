package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odpem/drims/internal/httpio"
)

// ListEventsHandler handles GET /audit/events.
// Query params: actor, resource, action, outcome, since (RFC3339), pageSize, pageToken
func ListEventsHandler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Actor:        q.Get("actor"),
			ResourceType: q.Get("resource"),
			Action:       q.Get("action"),
			Outcome:      q.Get("outcome"),
		}
		if since := q.Get("since"); since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				httpio.Fail(w, r, logger, httpio.BadRequest("since must be an RFC3339 timestamp"))
				return
			}
			filter.Since = t
		}
		pageSize, pageToken := httpio.PageParams(r)

		records, next, total, err := store.List(r.Context(), filter, pageSize, pageToken)
		if err != nil {
			httpio.Fail(w, r, logger, err)
			return
		}
		if records == nil {
			records = []EventRecord{}
		}
		httpio.WriteJSON(w, http.StatusOK, map[string]any{
			"events":        records,
			"nextPageToken": next,
			"totalSize":     total,
		})
	}
}

// GetEventHandler handles GET /audit/events/{eventId}.
func GetEventHandler(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "eventId")
		rec, err := store.GetByID(r.Context(), id)
		if err != nil {
			httpio.Fail(w, r, logger, err)
			return
		}
		if rec == nil {
			httpio.WriteError(w, http.StatusNotFound, httpio.CodeNotFound, fmt.Sprintf("audit event %q not found", id))
			return
		}
		httpio.WriteJSON(w, http.StatusOK, rec)
	}
}
