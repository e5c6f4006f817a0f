// Package relief runs the relief request workflow: agencies raise requests
// for goods, the eligibility reviewers approve or deny them, and logistics
// staff prepare, approve and dispatch packages against the approved ones.
//
// Request status follows the rules in pkg/status. Allocating stock to a
// package reserves it on the inventory line and books it against the request
// line; both writes are version-guarded in the same transaction.
package relief

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/status"
)

// Store provides database operations for the relief workflow.
type Store struct {
	db    *gorm.DB
	guard record.Guard
	now   func() time.Time
	loc   *time.Location
}

// NewStore creates a new Store.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{
		db:  gdb,
		now: func() time.Time { return time.Now().UTC() },
		loc: time.UTC,
	}
}

// InLocation sets the time zone that decides the calendar date of new
// requests and packages.
func (s *Store) InLocation(loc *time.Location) *Store {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// today is the current calendar date in s.loc, as midnight UTC.
func (s *Store) today() time.Time {
	t := s.now().In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lookup[T any](ctx context.Context, tx *gorm.DB, id int64, what string) (*T, error) {
	rec, err := repo.Get[T](ctx, tx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpio.Invalid("Unknown %s %d.", what, id)
	}
	if err != nil {
		return nil, fmt.Errorf("look up %s: %w", what, err)
	}
	return rec, nil
}

func activeAgency(ctx context.Context, tx *gorm.DB, id int64) (*models.Agency, error) {
	a, err := lookup[models.Agency](ctx, tx, id, "agency")
	if err != nil {
		return nil, err
	}
	if a.StatusCode != status.Active {
		return nil, httpio.Invalid("Agency %q is inactive.", a.AgencyName)
	}
	return a, nil
}

func activeEvent(ctx context.Context, tx *gorm.DB, id int64) error {
	ev, err := lookup[models.Event](ctx, tx, id, "event")
	if err != nil {
		return err
	}
	if ev.StatusCode != status.Active {
		return httpio.Invalid("Event %q is closed.", ev.EventName)
	}
	return nil
}

func activeWarehouse(ctx context.Context, tx *gorm.DB, id int64) (*models.Warehouse, error) {
	wh, err := lookup[models.Warehouse](ctx, tx, id, "warehouse")
	if err != nil {
		return nil, err
	}
	if wh.StatusCode != status.Active {
		return nil, httpio.Invalid("Warehouse %q is inactive.", wh.WarehouseName)
	}
	return wh, nil
}

// loadRequest returns request id with its lines.
func loadRequest(ctx context.Context, tx *gorm.DB, id int64) (*models.ReliefRequest, error) {
	var req models.ReliefRequest
	err := tx.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("item_id") }).
		First(&req, id).Error
	if err != nil {
		return nil, db.Translate(err)
	}
	return &req, nil
}

// save writes rec against the version it was loaded at.
func (s *Store) save(ctx context.Context, tx *gorm.DB, rec record.Versioned, actor string) error {
	return db.Translate(s.guard.Update(ctx, tx, rec, rec.CurrentVersion(), actor))
}

func trim(v string) string { return strings.TrimSpace(v) }
