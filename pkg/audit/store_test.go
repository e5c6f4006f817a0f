package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&EventRecord{}))
	return NewStore(db)
}

func seedEvents(t *testing.T, s *Store, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		actor := "lm1"
		if i%2 == 1 {
			actor = "lo1"
		}
		require.NoError(t, s.Append(context.Background(), &EventRecord{
			ID:           fmt.Sprintf("evt-%02d", i),
			Actor:        actor,
			Roles:        JSONStringSlice{"LM"},
			Method:       "POST",
			Path:         "/api/v1/events",
			ResourceType: "events",
			Action:       "create",
			Outcome:      OutcomeSuccess,
			StatusCode:   201,
			Metadata:     JSONMap{"n": float64(i)},
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestStore_AppendAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 7, 3, 14, 0, 0, 0, time.UTC)
	seedEvents(t, s, 1, base)

	got, err := s.GetByID(ctx, "evt-00")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "lm1", got.Actor)
	assert.Equal(t, JSONStringSlice{"LM"}, got.Roles)
	assert.Equal(t, float64(0), got.Metadata["n"])
	assert.True(t, got.CreatedAt.Equal(base))

	missing, err := s.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_AppendFillsTime(t *testing.T) {
	s := newTestStore(t)
	ev := &EventRecord{ID: "x", Actor: "a", Method: "PUT", Path: "/p", Outcome: OutcomeSuccess}
	require.NoError(t, s.Append(context.Background(), ev))
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestStore_ListPaginates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedEvents(t, s, 5, time.Date(2024, 7, 3, 14, 0, 0, 0, time.UTC))

	page1, next, total, err := s.List(ctx, ListFilter{}, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "evt-04", page1[0].ID, "newest first")
	assert.Equal(t, "evt-03", page1[1].ID)
	require.NotEmpty(t, next)

	page2, next, _, err := s.List(ctx, ListFilter{}, 2, next)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "evt-02", page2[0].ID)

	page3, next, _, err := s.List(ctx, ListFilter{}, 2, next)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Empty(t, next)

	_, _, _, err = s.List(ctx, ListFilter{}, 2, "yesterday")
	assert.Error(t, err)
}

func TestStore_ListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 7, 3, 14, 0, 0, 0, time.UTC)
	seedEvents(t, s, 6, base)

	got, _, total, err := s.List(ctx, ListFilter{Actor: "lo1"}, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	for _, ev := range got {
		assert.Equal(t, "lo1", ev.Actor)
	}

	_, _, total, err = s.List(ctx, ListFilter{Since: base.Add(4 * time.Minute)}, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, total, err = s.List(ctx, ListFilter{Outcome: OutcomeDenied}, 20, "")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStore_DeleteOlderThan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 7, 3, 14, 0, 0, 0, time.UTC)
	seedEvents(t, s, 4, base)

	deleted, err := s.DeleteOlderThan(ctx, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, _, total, err := s.List(ctx, ListFilter{}, 20, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
