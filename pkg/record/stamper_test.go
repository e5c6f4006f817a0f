package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type widget struct {
	ID   int64  `gorm:"primaryKey;column:widget_id;autoIncrement"`
	Name string `gorm:"column:name;uniqueIndex"`
	Audit
	Version
	Verification
}

func (widget) TableName() string { return "widget" }

// note only opts into update provenance.
type note struct {
	ID   int64 `gorm:"primaryKey"`
	Body string
	Version
}

type plain struct {
	Name string
}

func fixedClock(t time.Time) Stamper {
	return Stamper{Now: func() time.Time { return t }}
}

func TestStamp_New(t *testing.T) {
	at := time.Date(2024, 10, 1, 9, 30, 0, 0, time.UTC)
	w := &widget{Name: "tarp", Version: Version{VersionNbr: 7}}

	fixedClock(at).Stamp(w, "jdoe", true)

	assert.Equal(t, 1, w.VersionNbr)
	assert.Equal(t, "jdoe", w.CreateByID)
	assert.Equal(t, at, w.CreateDtime)
	assert.Equal(t, "jdoe", w.UpdateByID)
	assert.Equal(t, at, w.UpdateDtime)
	assert.Nil(t, w.VerifyByID)
	assert.Nil(t, w.VerifyDtime)
	assert.False(t, w.Verified())
}

func TestStamp_UpdateIncrementsOnce(t *testing.T) {
	created := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	w := &widget{}
	fixedClock(created).Stamp(w, "creator", true)

	for i := 1; i <= 3; i++ {
		fixedClock(created.Add(time.Duration(i)*time.Hour)).Stamp(w, "editor", false)
		assert.Equal(t, 1+i, w.VersionNbr)
	}

	assert.Equal(t, "creator", w.CreateByID)
	assert.Equal(t, created, w.CreateDtime)
	assert.Equal(t, "editor", w.UpdateByID)
	assert.Equal(t, created.Add(3*time.Hour), w.UpdateDtime)
}

func TestStamp_ConvertsToUTC(t *testing.T) {
	kingston := time.FixedZone("EST", -5*3600)
	local := time.Date(2024, 10, 1, 4, 0, 0, 0, kingston)
	w := &widget{}

	fixedClock(local).Stamp(w, "jdoe", true)

	assert.Equal(t, time.UTC, w.CreateDtime.Location())
	assert.True(t, local.Equal(w.CreateDtime))
}

func TestStamp_PartialCapabilities(t *testing.T) {
	n := &note{Version: Version{VersionNbr: 4}}
	Stamp(n, "jdoe", false)
	assert.Equal(t, 5, n.VersionNbr)

	// No capabilities at all is a no-op, not a failure.
	p := &plain{Name: "x"}
	assert.NotPanics(t, func() {
		Stamp(p, "jdoe", true)
		Verify(p, "jdoe")
	})
	assert.Equal(t, "x", p.Name)
}

func TestVerify_LeavesVersionAndUpdater(t *testing.T) {
	at := time.Date(2024, 10, 2, 12, 0, 0, 0, time.UTC)
	w := &widget{}
	fixedClock(at).Stamp(w, "creator", true)
	fixedClock(at).Stamp(w, "editor", false)

	fixedClock(at.Add(time.Hour)).Verify(w, "supervisor")

	assert.Equal(t, 2, w.VersionNbr)
	assert.Equal(t, "editor", w.UpdateByID)
	assert.Equal(t, at, w.UpdateDtime)
	if assert.NotNil(t, w.VerifyByID) {
		assert.Equal(t, "supervisor", *w.VerifyByID)
	}
	if assert.NotNil(t, w.VerifyDtime) {
		assert.Equal(t, at.Add(time.Hour), *w.VerifyDtime)
	}
	assert.True(t, w.Verified())
}
