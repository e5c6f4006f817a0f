// Package unique checks unique columns before a write so callers can show a
// readable message instead of a constraint violation.
//
// The check and the write are separate statements, so two concurrent writers
// can both pass. The database unique index still decides; this package only
// improves the common case.
package unique

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Result is the outcome of a uniqueness check.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

var ok = Result{Valid: true}

// FieldValue is one column of a composite check.
type FieldValue struct {
	Field    string
	Value    any
	Friendly string
}

// Validator runs existence queries against a GORM connection.
type Validator struct {
	db *gorm.DB
}

// New returns a Validator using db.
func New(db *gorm.DB) *Validator {
	return &Validator{db: db}
}

// Tx returns a Validator bound to tx, so checks see the transaction's writes.
func (v *Validator) Tx(tx *gorm.DB) *Validator {
	return &Validator{db: tx}
}

// Field reports whether value is free for field on model. currentID, when
// set, excludes the record being edited. Empty values and fields the model
// does not have are always valid.
func (v *Validator) Field(ctx context.Context, model any, field string, value any, currentID any, friendly string) (Result, error) {
	if isEmpty(value) {
		return ok, nil
	}
	s, err := v.parse(model)
	if err != nil {
		return Result{}, err
	}
	f := s.LookUpField(field)
	if f == nil {
		return ok, nil
	}

	q := v.db.WithContext(ctx).Table(s.Table).
		Where(clause.Eq{Column: clause.Column{Name: f.DBName}, Value: value})
	taken, err := exists(excludeCurrent(q, s, currentID))
	if err != nil {
		return Result{}, fmt.Errorf("check unique %s.%s: %w", s.Table, f.DBName, err)
	}
	if !taken {
		return ok, nil
	}
	if friendly == "" {
		friendly = FriendlyName(field)
	}
	return Result{
		Message: fmt.Sprintf(`%s "%v" is already in use. Please use a different value.`, friendly, value),
	}, nil
}

// Composite reports whether the combination of values is free on model.
// Nil values and unknown fields are left out of the condition; if nothing is
// left the result is valid.
func (v *Validator) Composite(ctx context.Context, model any, fields []FieldValue, currentID any) (Result, error) {
	if len(fields) == 0 {
		return ok, nil
	}
	s, err := v.parse(model)
	if err != nil {
		return Result{}, err
	}

	var conds []clause.Expression
	for _, fv := range fields {
		if fv.Value == nil {
			continue
		}
		f := s.LookUpField(fv.Field)
		if f == nil {
			continue
		}
		conds = append(conds, clause.Eq{Column: clause.Column{Name: f.DBName}, Value: fv.Value})
	}
	if len(conds) == 0 {
		return ok, nil
	}

	q := v.db.WithContext(ctx).Table(s.Table).Where(clause.And(conds...))
	taken, err := exists(excludeCurrent(q, s, currentID))
	if err != nil {
		return Result{}, fmt.Errorf("check unique %s: %w", s.Table, err)
	}
	if !taken {
		return ok, nil
	}

	names := make([]string, len(fields))
	for i, fv := range fields {
		names[i] = fv.Friendly
		if names[i] == "" {
			names[i] = FriendlyName(fv.Field)
		}
	}
	return Result{
		Message: fmt.Sprintf("This combination of %s already exists. Please use different values.", strings.Join(names, " + ")),
	}, nil
}

// FriendlyName turns a column name into a title: warehouse_name becomes
// "Warehouse Name".
func FriendlyName(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

func (v *Validator) parse(model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: v.db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parse %T: %w", model, err)
	}
	return stmt.Schema, nil
}

func excludeCurrent(q *gorm.DB, s *schema.Schema, currentID any) *gorm.DB {
	if isEmpty(currentID) {
		return q
	}
	pk := s.PrioritizedPrimaryField
	if pk == nil && len(s.PrimaryFields) > 0 {
		pk = s.PrimaryFields[0]
	}
	if pk == nil {
		return q
	}
	return q.Where(clause.Neq{Column: clause.Column{Name: pk.DBName}, Value: currentID})
}

func exists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	return rv.IsZero()
}
