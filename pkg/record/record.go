// Package record holds the provenance and optimistic-concurrency plumbing
// shared by every persisted DRIMS entity.
//
// Entities opt into behaviour by embedding Audit, Version and Verification.
// The Stamper and Guard only ever see the capability interfaces below, so an
// entity that does not embed a struct is simply skipped for that concern.
package record

import "time"

// Creatable is implemented by records that carry creator provenance.
type Creatable interface {
	SetCreated(actor string, at time.Time)
}

// Updatable is implemented by records that carry last-updater provenance.
type Updatable interface {
	SetUpdated(actor string, at time.Time)
}

// Versioned is implemented by records guarded by a version_nbr counter.
type Versioned interface {
	CurrentVersion() int
	SetVersion(v int)
}

// Verifiable is implemented by records that pass through a verification step.
type Verifiable interface {
	SetVerified(actor string, at time.Time)
}

// Audit holds create and update provenance columns.
type Audit struct {
	CreateByID  string    `gorm:"column:create_by_id;type:varchar(100);not null" json:"create_by_id"`
	CreateDtime time.Time `gorm:"column:create_dtime;not null" json:"create_dtime"`
	UpdateByID  string    `gorm:"column:update_by_id;type:varchar(100);not null" json:"update_by_id"`
	UpdateDtime time.Time `gorm:"column:update_dtime;not null" json:"update_dtime"`
}

// SetCreated implements Creatable.
func (a *Audit) SetCreated(actor string, at time.Time) {
	a.CreateByID = actor
	a.CreateDtime = at
}

// SetUpdated implements Updatable.
func (a *Audit) SetUpdated(actor string, at time.Time) {
	a.UpdateByID = actor
	a.UpdateDtime = at
}

// Version holds the optimistic-locking counter.
type Version struct {
	VersionNbr int `gorm:"column:version_nbr;not null;default:1" json:"version_nbr"`
}

// CurrentVersion implements Versioned.
func (v *Version) CurrentVersion() int { return v.VersionNbr }

// SetVersion implements Versioned.
func (v *Version) SetVersion(n int) { v.VersionNbr = n }

// Verification holds verifier provenance. Both columns stay NULL until the
// record is verified.
type Verification struct {
	VerifyByID  *string    `gorm:"column:verify_by_id;type:varchar(100)" json:"verify_by_id,omitempty"`
	VerifyDtime *time.Time `gorm:"column:verify_dtime" json:"verify_dtime,omitempty"`
}

// SetVerified implements Verifiable.
func (v *Verification) SetVerified(actor string, at time.Time) {
	v.VerifyByID = &actor
	v.VerifyDtime = &at
}

// Verified reports whether the record has been through verification.
func (v *Verification) Verified() bool {
	return v.VerifyByID != nil
}

// Columns written once at creation and never touched by a guarded update.
var immutableColumns = []string{"create_by_id", "create_dtime"}
