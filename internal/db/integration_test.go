//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/status"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("drims"),
		postgres.WithUsername("drims"),
		postgres.WithPassword("drims"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func startMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	ctr, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("drims"),
		mysql.WithUsername("drims"),
		mysql.WithPassword("drims"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)
	return dsn
}

func TestEngines(t *testing.T) {
	engines := []struct {
		name  string
		typ   string
		start func(*testing.T) string
	}{
		{"postgres", TypePostgres, startPostgres},
		{"mysql", TypeMySQL, startMySQL},
	}
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			gdb, err := Open(Config{Type: e.typ, DSN: e.start(t), MaxOpenConns: 4})
			require.NoError(t, err)

			ctx := context.Background()
			require.NoError(t, Migrate(ctx, gdb, nil))
			_, err = Seed(ctx, gdb)
			require.NoError(t, err)

			t.Run("stale update loses", func(t *testing.T) { testStaleUpdate(t, gdb) })
			t.Run("duplicate key", func(t *testing.T) { testDuplicate(t, gdb) })
		})
	}
}

func testStaleUpdate(t *testing.T, gdb *gorm.DB) {
	ctx := context.Background()
	guard := &record.Guard{}
	ev := &models.Event{
		EventType:  "FLOOD",
		StartDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EventName:  "June rains",
		EventDesc:  "Flooding in Clarendon",
		StatusCode: status.Active,
	}
	require.NoError(t, guard.Create(ctx, gdb, ev, "dg"))

	// Two editors read version 1.
	var a, b models.Event
	require.NoError(t, gdb.First(&a, ev.EventID).Error)
	require.NoError(t, gdb.First(&b, ev.EventID).Error)

	a.ImpactDesc = "Roads closed"
	require.NoError(t, guard.Update(ctx, gdb, &a, 1, "ddg"))
	assert.Equal(t, 2, a.VersionNbr)

	b.ImpactDesc = "Shelters open"
	err := guard.Update(ctx, gdb, &b, 1, "dir")
	assert.True(t, record.IsStale(err), "second writer must fail stale, got %v", err)

	var got models.Event
	require.NoError(t, gdb.First(&got, ev.EventID).Error)
	assert.Equal(t, "Roads closed", got.ImpactDesc)
	assert.Equal(t, "ddg", got.UpdateByID)
	assert.Equal(t, 2, got.VersionNbr)
}

func testDuplicate(t *testing.T, gdb *gorm.DB) {
	err := gdb.Create(&models.Parish{ParishCode: "01", ParishName: "Kingston again"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicate(err), "got %v", err)
	assert.ErrorIs(t, Translate(err), ErrDuplicate)
}
