package server

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/pkg/status"
)

// StatusEntry is one code of a status table with its display label and
// badge class.
type StatusEntry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Badge string `json:"badge"`
}

// statusesHandler returns the label table for one kind of status code, in
// code order.
func statusesHandler(w http.ResponseWriter, r *http.Request) {
	kind := status.Kind(chi.URLParam(r, "type"))
	table := status.Table(kind)
	if table == nil {
		httpio.WriteError(w, http.StatusNotFound, httpio.CodeNotFound, "Unknown status type "+string(kind)+".")
		return
	}
	entries := make([]StatusEntry, 0, len(table))
	for code, label := range table {
		entries = append(entries, StatusEntry{Code: code, Label: label, Badge: status.Badge(kind, code)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	httpio.WriteJSON(w, http.StatusOK, map[string]any{
		"type":     kind,
		"statuses": entries,
	})
}
