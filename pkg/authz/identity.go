package authz

import (
	"context"
	"net/http"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Headers set by the authenticating proxy in header mode.
const (
	HeaderUser  = "X-Remote-User"
	HeaderEmail = "X-Remote-Email"
	HeaderName  = "X-Remote-Name"
	HeaderRoles = "X-Remote-Roles"
)

type identityKey struct{}

// Identity is the authenticated DRIMS user. Roles are upper-case role codes
// such as "LO" or "AGENCY_USER".
type Identity struct {
	User  string   `json:"user"`
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the identity holds role.
func (id Identity) HasRole(role string) bool {
	role = strings.ToUpper(role)
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity on ctx, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Actor returns the user name stamped on audit fields, or "" when the request
// is anonymous.
func Actor(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.User
}

// headerIdentity reads the proxy headers. It reports false when no user is
// named.
func headerIdentity(h http.Header) (Identity, bool) {
	user := strings.TrimSpace(h.Get(HeaderUser))
	if user == "" {
		return Identity{}, false
	}
	return Identity{
		User:  user,
		Email: strings.TrimSpace(h.Get(HeaderEmail)),
		Name:  strings.TrimSpace(h.Get(HeaderName)),
		Roles: normalizeRoles(strings.Split(h.Get(HeaderRoles), ",")),
	}, true
}

// IdentityMiddleware trusts the proxy headers. Requests without a user header
// carry no identity.
func IdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := headerIdentity(r.Header); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// normalizeRoles trims and upper-cases role codes, dropping blanks and
// repeats but keeping first-seen order.
func normalizeRoles(in []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var out []string
	for _, role := range in {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role != "" && seen.Add(role) {
			out = append(out, role)
		}
	}
	return out
}
