package cache

import "time"

// Config holds configuration for the reference data cache.
type Config struct {
	// Enabled controls whether caching is active. When false the reference
	// endpoints are served straight from the database.
	Enabled bool

	// TTL bounds how stale a cached reference list may be.
	TTL time.Duration

	// MaxSize is the maximum number of cached responses.
	MaxSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		TTL:     5 * time.Minute,
		MaxSize: 256,
	}
}
