package record

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Guard persists records through the version-checked write path.
// The zero value is ready to use.
type Guard struct {
	Stamper Stamper
}

// Create stamps rec as new (version 1, creator and updater set) and inserts it.
func (g *Guard) Create(ctx context.Context, tx *gorm.DB, rec any, actor string) error {
	g.Stamper.Stamp(rec, actor, true)
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("create %s: %w", tableOf(tx, rec), err)
	}
	return nil
}

// Update writes every mutable column of rec, provided the stored row is still
// at version expected. On success rec carries version expected+1 and fresh
// updater fields. If another writer got there first the row is untouched,
// rec's version is restored and a *StaleVersionError is returned.
//
// The check and the write are a single conditional UPDATE, so no locking is
// needed beyond what the database does for one statement.
func (g *Guard) Update(ctx context.Context, tx *gorm.DB, rec Versioned, expected int, actor string) error {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(rec); err != nil {
		return fmt.Errorf("parse %T: %w", rec, err)
	}
	key, err := primaryKey(ctx, stmt, rec)
	if err != nil {
		return err
	}

	if rec.CurrentVersion() != expected {
		return &StaleVersionError{Table: stmt.Schema.Table, Key: key, Expected: expected}
	}

	g.Stamper.Stamp(rec, actor, false)

	res := tx.WithContext(ctx).
		Model(rec).
		Where("version_nbr = ?", expected).
		Select("*").
		Omit(append([]string{clause.Associations}, immutableColumns...)...).
		Updates(rec)
	if res.Error != nil {
		rec.SetVersion(expected)
		return fmt.Errorf("update %s %s: %w", stmt.Schema.Table, key, res.Error)
	}
	if res.RowsAffected == 0 {
		rec.SetVersion(expected)
		return &StaleVersionError{Table: stmt.Schema.Table, Key: key, Expected: expected}
	}
	return nil
}

// Check returns a *StaleVersionError when rec, as just loaded, is already
// past the version the caller edited. Handlers call it before validating an
// edit so a stale form is reported as stale.
func (g *Guard) Check(ctx context.Context, tx *gorm.DB, rec Versioned, expected int) error {
	if rec.CurrentVersion() == expected {
		return nil
	}
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(rec); err != nil {
		return fmt.Errorf("parse %T: %w", rec, err)
	}
	key, err := primaryKey(ctx, stmt, rec)
	if err != nil {
		return err
	}
	return &StaleVersionError{Table: stmt.Schema.Table, Key: key, Expected: expected}
}

// Verify stamps verifier fields and persists rec with a guarded update.
// The stamp itself leaves the version alone; the update that carries it is
// an ordinary versioned write.
func (g *Guard) Verify(ctx context.Context, tx *gorm.DB, rec Versioned, expected int, actor string) error {
	g.Stamper.Verify(rec, actor)
	return g.Update(ctx, tx, rec, expected, actor)
}

// primaryKey renders the record's primary key for error messages and refuses
// zero keys, which would turn the conditional update into a table-wide one.
func primaryKey(ctx context.Context, stmt *gorm.Statement, rec any) (string, error) {
	if len(stmt.Schema.PrimaryFields) == 0 {
		return "", fmt.Errorf("%s: %w", stmt.Schema.Table, ErrMissingKey)
	}
	rv := reflect.Indirect(reflect.ValueOf(rec))
	parts := make([]string, 0, len(stmt.Schema.PrimaryFields))
	for _, f := range stmt.Schema.PrimaryFields {
		v, zero := f.ValueOf(ctx, rv)
		if zero {
			return "", fmt.Errorf("%s: %w", stmt.Schema.Table, ErrMissingKey)
		}
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, "/"), nil
}

func tableOf(tx *gorm.DB, rec any) string {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(rec); err != nil {
		return fmt.Sprintf("%T", rec)
	}
	return stmt.Schema.Table
}
