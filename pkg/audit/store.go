package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ListFilter narrows a listing. Empty fields match everything.
type ListFilter struct {
	Actor        string
	ResourceType string
	Action       string
	Outcome      string
	Since        time.Time
}

// Store provides append-only access to audit events.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Append inserts event, filling the timestamp when unset.
func (s *Store) Append(ctx context.Context, event *EventRecord) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// List returns events newest first. pageToken is the RFC3339Nano timestamp
// of the last event on the previous page.
func (s *Store) List(ctx context.Context, f ListFilter, pageSize int, pageToken string) ([]EventRecord, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	base := s.filtered(s.db.WithContext(ctx).Model(&EventRecord{}), f)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count audit events: %w", err)
	}

	query := s.filtered(s.db.WithContext(ctx), f).Order("created_at DESC").Order("id DESC").Limit(pageSize + 1)
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("created_at < ?", t)
	}

	var records []EventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list audit events: %w", err)
	}

	var next string
	if len(records) > pageSize {
		next = records[pageSize-1].CreatedAt.Format(time.RFC3339Nano)
		records = records[:pageSize]
	}
	return records, next, int(total), nil
}

func (s *Store) filtered(q *gorm.DB, f ListFilter) *gorm.DB {
	if f.Actor != "" {
		q = q.Where("actor = ?", f.Actor)
	}
	if f.ResourceType != "" {
		q = q.Where("resource_type = ?", f.ResourceType)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Outcome != "" {
		q = q.Where("outcome = ?", f.Outcome)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	return q
}

// GetByID returns the event, or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (*EventRecord, error) {
	var rec EventRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get audit event %s: %w", id, err)
	}
	return &rec, nil
}

// DeleteOlderThan deletes events created before cutoff and returns how many
// were removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&EventRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete old audit events: %w", res.Error)
	}
	return res.RowsAffected, nil
}
