// Package schedule reads the per-jurisdiction schedule directory. The
// directory is owned by an external scheduling system; the saga only looks
// slots up, it never writes them.
package schedule

import (
	"time"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/faults"
)

// Schedule is an immutable per-jurisdiction slot record.
type Schedule struct {
	ID          int       `json:"id"`
	CenterID    int       `json:"centerId"`
	SpecialtyID int       `json:"specialtyId"`
	MedicID     int       `json:"medicId"`
	Date        time.Time `json:"date"`
	CountryISO  string    `json:"countryISO"`
}

// Validate enforces the record shape; a malformed directory row is caught on
// read rather than propagated into the ledger.
func (s *Schedule) Validate() error {
	if s.ID <= 0 {
		return faults.Invalid("Schedule ID must be a valid number")
	}
	if s.CenterID <= 0 {
		return faults.Invalid("Center ID must be a valid number")
	}
	if s.SpecialtyID <= 0 {
		return faults.Invalid("Specialty ID must be a valid number")
	}
	if s.MedicID <= 0 {
		return faults.Invalid("Medic ID must be a valid number")
	}
	if s.Date.IsZero() {
		return faults.Invalid("Date must be a valid date")
	}
	if !appointment.IsSupportedCountry(s.CountryISO) {
		return &faults.UnsupportedJurisdictionError{CountryISO: s.CountryISO}
	}
	return nil
}
