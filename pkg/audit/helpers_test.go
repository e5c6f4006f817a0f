package audit

import (
	"net/http"
	"slices"
	"testing"
)

func TestExtractors(t *testing.T) {
	tests := []struct {
		method, path string
		resource     string
		ids          []string
		action       string
	}{
		{"POST", "/api/v1/events", "events", nil, "create"},
		{"PUT", "/api/v1/events/7", "events", []string{"7"}, "update"},
		{"POST", "/api/v1/events/7/close", "events", []string{"7"}, "close"},
		{"POST", "/api/v1/eligibility/12/decision", "eligibility", []string{"12"}, "decision"},
		{"POST", "/api/v1/inventory/intake", "inventory", nil, "intake"},
		{"POST", "/api/v1/reference/uoms", "uoms", nil, "create"},
		{"PUT", "/api/v1/requests/3/items", "requests", []string{"3"}, "items"},
		{"DELETE", "/api/v1/packages/9", "packages", []string{"9"}, "delete"},
		{"POST", "/elsewhere", "", nil, "create"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if got := extractResourceType(tt.path); got != tt.resource {
				t.Errorf("resource = %q, want %q", got, tt.resource)
			}
			if got := extractResourceIDs(tt.path); !slices.Equal(got, tt.ids) {
				t.Errorf("ids = %v, want %v", got, tt.ids)
			}
			if got := extractAction(tt.method, tt.path); got != tt.action {
				t.Errorf("action = %q, want %q", got, tt.action)
			}
		})
	}
}

func TestIsAudited(t *testing.T) {
	tests := []struct {
		method, path string
		want         bool
	}{
		{"GET", "/api/v1/events", false},
		{"POST", "/api/v1/events", true},
		{"PUT", "/api/v1/events/1", true},
		{"DELETE", "/api/v1/events/1", true},
		{"POST", "/healthz", false},
		{"GET", "/readyz", false},
	}
	for _, tt := range tests {
		if got := isAudited(tt.method, tt.path); got != tt.want {
			t.Errorf("isAudited(%s %s) = %v, want %v", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestOutcomeFromStatus(t *testing.T) {
	tests := map[int]string{
		http.StatusOK:                  OutcomeSuccess,
		http.StatusCreated:             OutcomeSuccess,
		http.StatusUnauthorized:        OutcomeDenied,
		http.StatusForbidden:           OutcomeDenied,
		http.StatusConflict:            OutcomeConflict,
		http.StatusUnprocessableEntity: OutcomeFailure,
		http.StatusInternalServerError: OutcomeFailure,
	}
	for code, want := range tests {
		if got := outcomeFromStatus(code); got != want {
			t.Errorf("outcomeFromStatus(%d) = %q, want %q", code, got, want)
		}
	}
}
