package authz

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRolesClaim is where Keycloak puts realm roles.
const DefaultRolesClaim = "realm_access.roles"

// JWTConfig configures bearer-token identities.
type JWTConfig struct {
	// PublicKeyPath is a PEM-encoded RSA public key for RS256 verification.
	// If empty, tokens are parsed but NOT verified; only use this behind a
	// proxy that has already verified them.
	PublicKeyPath string

	// Issuer and Audience are checked when set.
	Issuer   string
	Audience string

	// RolesClaim is a dot-separated claim path. Default: realm_access.roles.
	RolesClaim string

	Logger *slog.Logger
}

// JWTMiddleware returns HTTP middleware that builds the identity from an
// "Authorization: Bearer" token. The user is preferred_username, falling
// back to sub. Missing or invalid tokens leave the request anonymous.
func JWTMiddleware(cfg JWTConfig) (func(http.Handler) http.Handler, error) {
	if cfg.RolesClaim == "" {
		cfg.RolesClaim = DefaultRolesClaim
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var publicKey *rsa.PublicKey
	if cfg.PublicKeyPath != "" {
		key, err := loadPublicKey(cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		publicKey = key
		cfg.Logger.Info("identity from RS256 bearer tokens", "keyPath", cfg.PublicKeyPath)
	} else {
		cfg.Logger.Warn("no JWT public key configured, bearer tokens are not verified")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := parseClaims(token, publicKey, cfg)
			if err != nil {
				cfg.Logger.Debug("bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			id := identityFromClaims(claims, cfg.RolesClaim)
			if id.User == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read JWT public key %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not RSA (got %T)", parsed)
	}
	return key, nil
}

// extractBearerToken extracts the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseClaims(tokenString string, publicKey *rsa.PublicKey, cfg JWTConfig) (jwt.MapClaims, error) {
	var opts []jwt.ParserOption
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	claims := jwt.MapClaims{}
	var err error
	if publicKey != nil {
		_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return publicKey, nil
		}, opts...)
	} else {
		_, _, err = jwt.NewParser(opts...).ParseUnverified(tokenString, claims)
	}
	if err != nil {
		return nil, fmt.Errorf("parse JWT: %w", err)
	}
	return claims, nil
}

func identityFromClaims(claims jwt.MapClaims, rolesClaim string) Identity {
	id := Identity{
		User:  stringClaim(claims, "preferred_username"),
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
	}
	if id.User == "" {
		id.User, _ = claims.GetSubject()
	}
	var roles []string
	switch v := lookupClaim(claims, rolesClaim).(type) {
	case string:
		roles = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				roles = append(roles, strings.Split(s, ",")...)
			}
		}
	}
	id.Roles = normalizeRoles(roles)
	return id
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}

// lookupClaim follows a dot-separated path through nested claim objects.
func lookupClaim(claims jwt.MapClaims, path string) any {
	var current any = map[string]any(claims)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[part]; !ok {
			return nil
		}
	}
	return current
}
