package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxLength bounds the size of a filter expression.
const MaxLength = 1024

// ErrInvalid is matched by every parse or compile failure.
var ErrInvalid = errors.New("invalid filter")

// Error describes why a filter was rejected.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Fields maps the identifiers a caller may filter on to column names.
type Fields map[string]string

// Parse parses a filter expression.
func Parse(raw string) (*Expression, error) {
	if len(raw) > MaxLength {
		return nil, &Error{Msg: fmt.Sprintf("filter is longer than %d characters", MaxLength)}
	}
	expr, err := parser.ParseString("", raw)
	if err != nil {
		return nil, &Error{Msg: err.Error()}
	}
	return expr, nil
}

// Compile turns raw into a condition over fields. An empty filter yields a
// nil expression.
func Compile(raw string, fields Fields) (clause.Expression, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	expr, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return expr.compile(fields)
}

// Apply adds the compiled filter to q.
func Apply(q *gorm.DB, raw string, fields Fields) (*gorm.DB, error) {
	cond, err := Compile(raw, fields)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return q, nil
	}
	return q.Where(cond), nil
}

func (e *Expression) compile(fields Fields) (clause.Expression, error) {
	ors := make([]clause.Expression, 0, len(e.Terms))
	for _, t := range e.Terms {
		c, err := t.compile(fields)
		if err != nil {
			return nil, err
		}
		ors = append(ors, c)
	}
	if len(ors) == 1 {
		return ors[0], nil
	}
	return clause.Or(ors...), nil
}

func (t *Term) compile(fields Fields) (clause.Expression, error) {
	ands := make([]clause.Expression, 0, len(t.Factors))
	for _, f := range t.Factors {
		var (
			c   clause.Expression
			err error
		)
		if f.Sub != nil {
			c, err = f.Sub.compile(fields)
		} else {
			c, err = f.Comparison.compile(fields)
		}
		if err != nil {
			return nil, err
		}
		ands = append(ands, c)
	}
	if len(ands) == 1 {
		return ands[0], nil
	}
	return clause.And(ands...), nil
}

func (c *Comparison) compile(fields Fields) (clause.Expression, error) {
	col, ok := fields[strings.ToLower(c.Field)]
	if !ok {
		return nil, &Error{Msg: fmt.Sprintf("column %d: cannot filter on %q", c.Pos.Column, c.Field)}
	}
	column := clause.Column{Name: col}

	if c.In != nil {
		vals := make([]any, len(c.In))
		for i, v := range c.In {
			if v.Null {
				return nil, &Error{Msg: fmt.Sprintf("column %d: NULL is not allowed in IN", c.Pos.Column)}
			}
			vals[i] = v.literal()
		}
		in := clause.IN{Column: column, Values: vals}
		if c.Not {
			return clause.Not(in), nil
		}
		return in, nil
	}
	if c.Not {
		return nil, &Error{Msg: fmt.Sprintf("column %d: NOT is only allowed before IN", c.Pos.Column)}
	}

	val := c.Value.literal()
	switch strings.ToUpper(c.Op) {
	case "=":
		return clause.Eq{Column: column, Value: val}, nil
	case "!=", "<>":
		return clause.Neq{Column: column, Value: val}, nil
	case "<":
		return clause.Lt{Column: column, Value: val}, nil
	case "<=":
		return clause.Lte{Column: column, Value: val}, nil
	case ">":
		return clause.Gt{Column: column, Value: val}, nil
	case ">=":
		return clause.Gte{Column: column, Value: val}, nil
	case "LIKE":
		if c.Value.String == nil {
			return nil, &Error{Msg: fmt.Sprintf("column %d: LIKE needs a string", c.Pos.Column)}
		}
		return clause.Like{Column: column, Value: val}, nil
	}
	return nil, &Error{Msg: fmt.Sprintf("column %d: unknown operator %q", c.Pos.Column, c.Op)}
}

// literal returns the Go value bound for v. A NULL literal yields nil, which
// GORM renders as IS NULL / IS NOT NULL for = and !=.
func (v *Value) literal() any {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		if i, err := strconv.ParseInt(*v.Number, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(*v.Number, 64)
		return f
	case v.Bool != nil:
		return strings.EqualFold(*v.Bool, "true")
	}
	return nil
}
