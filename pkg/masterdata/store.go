// Package masterdata manages the DRIMS reference and master data: relief
// events, the item catalogue, warehouses and their custodians, agencies,
// donors, and the parish, category and unit-of-measure lists.
//
// Every write goes through record.Guard, so updates carry the version the
// caller last saw and lose cleanly to a concurrent editor.
package masterdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/unique"
)

// Store provides database operations for master data.
type Store struct {
	db     *gorm.DB
	guard  record.Guard
	unique *unique.Validator
	now    func() time.Time
}

// NewStore creates a new Store.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{
		db:     gdb,
		unique: unique.New(gdb),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListOptions narrows a list query.
type ListOptions = repo.ListOptions

// VersionInput carries the version the caller last read.
type VersionInput = repo.VersionInput

func (s *Store) checkParish(ctx context.Context, tx *gorm.DB, code string) error {
	if code == "" {
		return nil
	}
	found, err := repo.Exists(ctx, tx, &models.Parish{}, "parish_code = ?", code)
	if err != nil {
		return fmt.Errorf("look up parish: %w", err)
	}
	if !found {
		return httpio.Invalid("Unknown parish code %q.", code)
	}
	return nil
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
