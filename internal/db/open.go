// Package db opens the DRIMS database, migrates the schema and seeds
// reference data.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database types.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
)

// Config selects and tunes the database connection.
type Config struct {
	Type         string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	// Debug logs every statement through GORM's logger.
	Debug bool
}

// DefaultConfig returns a local SQLite database file.
func DefaultConfig() Config {
	return Config{
		Type:         TypeSQLite,
		DSN:          "drims.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		MaxLifetime:  30 * time.Minute,
	}
}

// Open connects to the configured database.
func Open(cfg Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case TypeSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	case TypePostgres:
		dialector = postgres.Open(cfg.DSN)
	case TypeMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Type == TypeSQLite || cfg.Type == "" {
		// SQLite allows a single writer; serialising avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	slog.Info("database connected", "type", dialector.Name())
	return gdb, nil
}

// Ping checks the database connection.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
