package cache

import (
	"log/slog"
	"net/http"
)

// ReferencePrefix is the URL prefix of the cached reference lists.
const ReferencePrefix = "/api/v1/reference/"

// Manager owns the reference data cache. A nil *Manager is valid and caches
// nothing, so callers need not check whether caching is enabled.
type Manager struct {
	reference *LRUCache
	logger    *slog.Logger
}

// NewManager returns a Manager for cfg, or nil when caching is disabled.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		reference: NewLRUCache(cfg.MaxSize, cfg.TTL),
		logger:    logger,
	}
}

// InvalidateReference drops cached responses for one reference list, such as
// "categories" or "uoms".
func (m *Manager) InvalidateReference(kind string) {
	if m == nil {
		return
	}
	n := m.reference.InvalidatePrefix(ReferencePrefix + kind)
	m.logger.Debug("reference cache invalidated", "kind", kind, "entries", n)
}

// InvalidateAll clears the cache.
func (m *Manager) InvalidateAll() {
	if m == nil {
		return
	}
	m.reference.InvalidateAll()
}

// ReferenceMiddleware caches GET responses under /api/v1/reference/.
func (m *Manager) ReferenceMiddleware() func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return Middleware(m.reference)
}
