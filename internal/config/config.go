// Package config loads the DRIMS server settings from defaults, an optional
// YAML file, DRIMS_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // display.timezone must resolve on hosts without zoneinfo

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/server"
	"github.com/odpem/drims/pkg/audit"
	"github.com/odpem/drims/pkg/authz"
	"github.com/odpem/drims/pkg/cache"
)

// EnvPrefix prefixes every environment variable: db.dsn is DRIMS_DB_DSN.
const EnvPrefix = "DRIMS"

// Config is the full server configuration.
type Config struct {
	Listen  string        `mapstructure:"listen"`
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Display DisplayConfig `mapstructure:"display"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Cache   CacheConfig   `mapstructure:"cache"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

type DBConfig struct {
	Type         string `mapstructure:"type"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Debug        bool   `mapstructure:"debug"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	Mode string    `mapstructure:"mode"`
	JWT  JWTConfig `mapstructure:"jwt"`
}

type JWTConfig struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
	RolesClaim    string `mapstructure:"roles_claim"`
}

type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type AuditConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	LogDenied         bool   `mapstructure:"log_denied"`
	RetentionDays     int    `mapstructure:"retention_days"`
	RetentionSchedule string `mapstructure:"retention_schedule"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	MaxSize int           `mapstructure:"max_size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()
	auditDefaults := audit.DefaultConfig()
	cacheDefaults := cache.DefaultConfig()

	v.SetDefault("listen", ":8080")
	v.SetDefault("db.type", dbDefaults.Type)
	v.SetDefault("db.dsn", dbDefaults.DSN)
	v.SetDefault("db.max_open_conns", dbDefaults.MaxOpenConns)
	v.SetDefault("db.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("auth.mode", string(authz.ModeHeader))
	v.SetDefault("auth.jwt.public_key_path", "")
	v.SetDefault("auth.jwt.issuer", "")
	v.SetDefault("auth.jwt.audience", "")
	v.SetDefault("auth.jwt.roles_claim", authz.DefaultRolesClaim)
	v.SetDefault("display.timezone", "America/Jamaica")
	v.SetDefault("audit.enabled", auditDefaults.Enabled)
	v.SetDefault("audit.log_denied", auditDefaults.LogDenied)
	v.SetDefault("audit.retention_days", auditDefaults.RetentionDays)
	v.SetDefault("audit.retention_schedule", auditDefaults.RetentionSchedule)
	v.SetDefault("cache.enabled", cacheDefaults.Enabled)
	v.SetDefault("cache.ttl", cacheDefaults.TTL)
	v.SetDefault("cache.max_size", cacheDefaults.MaxSize)
	v.SetDefault("cors.allowed_origins", []string{})
}

// BindFlags exposes the commonly overridden keys as flags and binds them to
// v. Flag names are the keys with dots and underscores turned into dashes.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("listen", ":8080", "Address to listen on")
	fs.String("db-type", db.TypeSQLite, "Database type: sqlite, postgres or mysql")
	fs.String("db-dsn", "drims.db", "Database connection string")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "text", "Log format: text or json")
	fs.String("auth-mode", string(authz.ModeHeader), "Identity source: header or jwt")
	fs.StringSlice("cors-allowed-origins", nil, "Allowed CORS origins")

	for key, flag := range map[string]string{
		"listen":               "listen",
		"db.type":              "db-type",
		"db.dsn":               "db-dsn",
		"log.level":            "log-level",
		"log.format":           "log-format",
		"auth.mode":            "auth-mode",
		"cors.allowed_origins": "cors-allowed-origins",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load reads the configuration held by v. When path is set the YAML file
// there is merged over the defaults; environment variables override both.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DB.Type {
	case db.TypeSQLite, db.TypePostgres, db.TypeMySQL:
	default:
		return fmt.Errorf("db.type: unsupported database type %q", c.DB.Type)
	}
	switch authz.Mode(c.Auth.Mode) {
	case authz.ModeHeader, authz.ModeJWT:
	default:
		return fmt.Errorf("auth.mode: unknown mode %q", c.Auth.Mode)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative")
	}
	return nil
}

// Database returns the connection settings.
func (c *Config) Database() db.Config {
	cfg := db.DefaultConfig()
	cfg.Type = c.DB.Type
	cfg.DSN = c.DB.DSN
	if c.DB.MaxOpenConns > 0 {
		cfg.MaxOpenConns = c.DB.MaxOpenConns
		cfg.MaxIdleConns = min(cfg.MaxIdleConns, c.DB.MaxOpenConns)
	}
	cfg.Debug = c.DB.Debug
	return cfg
}

// Server returns the HTTP server settings.
func (c *Config) Server() (server.Config, error) {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return server.Config{}, fmt.Errorf("display.timezone: %w", err)
	}
	auditCfg := c.AuditConfig()
	auditCfg.Location = loc
	return server.Config{
		Auth: authz.Config{
			Mode: authz.Mode(c.Auth.Mode),
			JWT: authz.JWTConfig{
				PublicKeyPath: c.Auth.JWT.PublicKeyPath,
				Issuer:        c.Auth.JWT.Issuer,
				Audience:      c.Auth.JWT.Audience,
				RolesClaim:    c.Auth.JWT.RolesClaim,
			},
		},
		Audit:              auditCfg,
		Cache:              cache.Config{Enabled: c.Cache.Enabled, TTL: c.Cache.TTL, MaxSize: c.Cache.MaxSize},
		CORSAllowedOrigins: c.CORS.AllowedOrigins,
		Location:           loc,
	}, nil
}

// AuditConfig returns the audit settings.
func (c *Config) AuditConfig() audit.Config {
	return audit.Config{
		Enabled:           c.Audit.Enabled,
		LogDenied:         c.Audit.LogDenied,
		RetentionDays:     c.Audit.RetentionDays,
		RetentionSchedule: c.Audit.RetentionSchedule,
	}
}

// Logger builds the structured logger the settings describe.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
