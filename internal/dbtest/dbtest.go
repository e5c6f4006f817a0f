// Package dbtest opens migrated, seeded in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/odpem/drims/internal/db"
)

// Open returns an in-memory SQLite database with the full schema and the
// reference seed data. extra tables are migrated alongside the models.
func Open(t testing.TB, extra ...any) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, gdb, nil, extra...))
	_, err = db.Seed(ctx, gdb)
	require.NoError(t, err)
	return gdb
}
