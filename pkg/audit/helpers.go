package audit

import (
	"net/http"
	"strings"
)

// apiSegments returns the path segments after /api/v1.
func apiSegments(path string) []string {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(rest, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractResourceType returns the collection a path addresses:
// /api/v1/events/7/close is "events", /api/v1/reference/uoms is "uoms".
func extractResourceType(path string) string {
	parts := apiSegments(path)
	if len(parts) == 0 {
		return ""
	}
	if parts[0] == "reference" && len(parts) > 1 {
		return parts[1]
	}
	return parts[0]
}

// extractResourceIDs returns the numeric segments of a path.
func extractResourceIDs(path string) []string {
	var ids []string
	for _, p := range apiSegments(path) {
		if isNumeric(p) {
			ids = append(ids, p)
		}
	}
	return ids
}

// extractAction names what a request did. A trailing word after an ID, as in
// /events/7/close, is the action; otherwise the method decides.
func extractAction(method, path string) string {
	parts := apiSegments(path)
	if n := len(parts); n >= 2 && !isNumeric(parts[n-1]) && (isNumeric(parts[n-2]) || parts[0] == "inventory") {
		return parts[n-1]
	}
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut:
		return "update"
	case http.MethodPatch:
		return "patch"
	case http.MethodDelete:
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// isAudited returns true for mutating calls. Reads and health checks are not
// recorded.
func isAudited(method, path string) bool {
	if isHealthEndpoint(path) {
		return false
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// isHealthEndpoint returns true for health-check paths.
func isHealthEndpoint(path string) bool {
	switch path {
	case "/livez", "/readyz", "/healthz":
		return true
	}
	return false
}

// outcomeFromStatus maps HTTP status codes to audit outcomes.
func outcomeFromStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return OutcomeSuccess
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return OutcomeDenied
	case code == http.StatusConflict:
		return OutcomeConflict
	default:
		return OutcomeFailure
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
