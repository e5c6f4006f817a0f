package authz

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// RequireFeature returns middleware that only lets a request through when the
// caller's roles unlock feature. Anonymous requests get 401, denied ones 403.
func RequireFeature(authorizer Authorizer, feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusUnauthorized, "unauthenticated", "sign in to use this feature")
				return
			}

			allowed, err := authorizer.Authorize(r.Context(), AuthzRequest{
				User:    id.User,
				Roles:   id.Roles,
				Feature: feature,
			})
			if err != nil {
				writeDenied(w, http.StatusInternalServerError, "internal_error", "authorization check failed")
				return
			}
			if !allowed {
				writeDenied(w, http.StatusForbidden, "forbidden", fmt.Sprintf("your roles do not grant %s", feature))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyFeature lets a request through when any of the features is
// unlocked.
func RequireAnyFeature(authorizer Authorizer, feature ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusUnauthorized, "unauthenticated", "sign in to use this feature")
				return
			}
			for _, f := range feature {
				allowed, err := authorizer.Authorize(r.Context(), AuthzRequest{User: id.User, Roles: id.Roles, Feature: f})
				if err != nil {
					writeDenied(w, http.StatusInternalServerError, "internal_error", "authorization check failed")
					return
				}
				if allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeDenied(w, http.StatusForbidden, "forbidden", "your roles do not grant this feature")
		})
	}
}

// RequireIdentity only rejects anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeDenied(w, http.StatusUnauthorized, "unauthenticated", "sign in to use this feature")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeDenied(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
