package record

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleVersion is matched by every *StaleVersionError.
	ErrStaleVersion = errors.New("stale version")

	// ErrMissingKey is returned when a guarded update is attempted on a record
	// whose primary key is unset.
	ErrMissingKey = errors.New("record has no primary key value")
)

// StaleVersionError reports that a record changed since the caller read it.
type StaleVersionError struct {
	Table    string
	Key      string
	Expected int
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("%s %s: expected version %d is no longer current", e.Table, e.Key, e.Expected)
}

// Is lets errors.Is(err, ErrStaleVersion) match.
func (e *StaleVersionError) Is(target error) bool {
	return target == ErrStaleVersion
}

// IsStale reports whether err is a stale-version conflict.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleVersion)
}
