// Package repo holds the query and guarded-write helpers shared by the DRIMS
// stores.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/unique"
)

// List runs q with the filter expression raw applied, in the given order.
func List[T any](ctx context.Context, q *gorm.DB, raw string, fields filter.Fields, order string) ([]T, error) {
	q, err := filter.Apply(q.WithContext(ctx), raw, fields)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := q.Order(order).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

// Get loads the row with integer primary key id.
func Get[T any](ctx context.Context, tx *gorm.DB, id int64) (*T, error) {
	rec := new(T)
	if err := tx.WithContext(ctx).First(rec, id).Error; err != nil {
		return nil, db.Translate(err)
	}
	return rec, nil
}

// ListOptions narrows a list query.
type ListOptions struct {
	// Status is a named status filter such as "active", "closed" or "all".
	Status string
	// Filter is a filter expression over the entity's listed fields.
	Filter string
}

// VersionInput carries the version the caller last read.
type VersionInput struct {
	VersionNbr int `json:"version_nbr" validate:"required,gte=1"`
}

// Versioned constrains P to a pointer to T that carries a version.
type Versioned[T any] interface {
	*T
	record.Versioned
}

// Edit loads row id, lets apply change it, and writes it back provided the
// stored version is still expected. A stale expected version is reported
// before apply runs.
func Edit[T any, P Versioned[T]](ctx context.Context, gdb *gorm.DB, guard *record.Guard, id int64, expected int, actor string, apply func(tx *gorm.DB, rec P) error) (P, error) {
	return write[T, P](ctx, gdb, guard, id, expected, apply, func(tx *gorm.DB, rec P) error {
		return guard.Update(ctx, tx, rec, expected, actor)
	})
}

// Verify is Edit for a verification step: the write also stamps the
// verifier fields.
func Verify[T any, P Versioned[T]](ctx context.Context, gdb *gorm.DB, guard *record.Guard, id int64, expected int, actor string, apply func(tx *gorm.DB, rec P) error) (P, error) {
	return write[T, P](ctx, gdb, guard, id, expected, apply, func(tx *gorm.DB, rec P) error {
		return guard.Verify(ctx, tx, rec, expected, actor)
	})
}

func write[T any, P Versioned[T]](ctx context.Context, gdb *gorm.DB, guard *record.Guard, id int64, expected int, apply, save func(tx *gorm.DB, rec P) error) (P, error) {
	var out P
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := Get[T](ctx, tx, id)
		if err != nil {
			return err
		}
		rec := P(row)
		if err := guard.Check(ctx, tx, rec, expected); err != nil {
			return err
		}
		if err := apply(tx, rec); err != nil {
			return err
		}
		if err := save(tx, rec); err != nil {
			return db.Translate(err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create runs check and inserts rec in one transaction.
func Create(ctx context.Context, gdb *gorm.DB, guard *record.Guard, rec any, actor string, check func(tx *gorm.DB) error) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		return db.Translate(guard.Create(ctx, tx, rec, actor))
	})
}

// Exists reports whether any row of model matches the condition.
func Exists(ctx context.Context, tx *gorm.DB, model any, where string, args ...any) (bool, error) {
	var n int64
	if err := tx.WithContext(ctx).Model(model).Where(where, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CheckUnique turns a failed uniqueness check into a client error.
func CheckUnique(res unique.Result, err error) error {
	if err != nil {
		return err
	}
	return httpio.Duplicate(res)
}

// StatusFilter restricts q to the status code named by name, using fallback
// when name is empty. "all" applies no restriction.
func StatusFilter(q *gorm.DB, name string, codes map[string]string, fallback string) (*gorm.DB, error) {
	if name == "" {
		name = fallback
	}
	if name == "all" {
		return q, nil
	}
	code, ok := codes[name]
	if !ok {
		return nil, httpio.BadRequest("Unknown status filter %q.", name)
	}
	return q.Where("status_code = ?", code), nil
}
