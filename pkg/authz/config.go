package authz

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Mode selects where identities come from.
type Mode string

const (
	// ModeHeader trusts X-Remote-* headers set by an authenticating proxy.
	ModeHeader Mode = "header"
	// ModeJWT reads a Keycloak bearer token from the Authorization header.
	ModeJWT Mode = "jwt"
)

// Config selects and configures the identity middleware.
type Config struct {
	Mode Mode
	JWT  JWTConfig
}

// NewIdentityMiddleware builds the identity middleware for cfg.Mode. An empty
// mode means ModeHeader.
func NewIdentityMiddleware(cfg Config, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Mode {
	case "", ModeHeader:
		logger.Info("identity from proxy headers")
		return IdentityMiddleware(), nil
	case ModeJWT:
		if cfg.JWT.Logger == nil {
			cfg.JWT.Logger = logger
		}
		return JWTMiddleware(cfg.JWT)
	default:
		return nil, fmt.Errorf("unknown auth mode %q (want header or jwt)", cfg.Mode)
	}
}
