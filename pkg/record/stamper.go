package record

import "time"

// Stamper writes provenance onto records before they are persisted.
// The zero value stamps with the current UTC time.
type Stamper struct {
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

func (s Stamper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Stamp records who touched rec and when. A new record gets creator fields
// and version 1; an existing one has its version bumped by one. Updater
// fields are written in both cases.
func (s Stamper) Stamp(rec any, actor string, isNew bool) {
	at := s.now()

	if isNew {
		if c, ok := rec.(Creatable); ok {
			c.SetCreated(actor, at)
		}
		if v, ok := rec.(Versioned); ok {
			v.SetVersion(1)
		}
	}

	if u, ok := rec.(Updatable); ok {
		u.SetUpdated(actor, at)
	}

	if !isNew {
		if v, ok := rec.(Versioned); ok {
			v.SetVersion(v.CurrentVersion() + 1)
		}
	}
}

// Verify sets verifier fields only.
func (s Stamper) Verify(rec any, actor string) {
	if v, ok := rec.(Verifiable); ok {
		v.SetVerified(actor, s.now())
	}
}

var defaultStamper Stamper

// Stamp uses the default Stamper.
func Stamp(rec any, actor string, isNew bool) {
	defaultStamper.Stamp(rec, actor, isNew)
}

// Verify uses the default Stamper.
func Verify(rec any, actor string) {
	defaultStamper.Verify(rec, actor)
}
