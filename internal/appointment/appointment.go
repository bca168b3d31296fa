package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/medibook/appointment-saga/internal/faults"
)

// Appointment statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// SupportedCountries is the closed jurisdiction set the saga operates on.
var SupportedCountries = []string{"PE", "CL"}

// IsSupportedCountry reports membership in the supported jurisdiction set.
func IsSupportedCountry(countryISO string) bool {
	for _, c := range SupportedCountries {
		if c == countryISO {
			return true
		}
	}
	return false
}

// Appointment is the booking record owned by the appointment store. The same
// shape travels denormalized inside Created/Completed events so consumers
// never re-query the store of record.
type Appointment struct {
	ID         string    `json:"id" dynamodbav:"id"` // PK
	InsuredID  string    `json:"insuredId" dynamodbav:"insuredId"`
	ScheduleID int       `json:"scheduleId" dynamodbav:"scheduleId"`
	CountryISO string    `json:"countryISO" dynamodbav:"countryISO"`
	Status     string    `json:"status" dynamodbav:"status"` // pending | completed | failed
	CreatedAt  time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// New builds a Pending appointment. The id is always assigned here, never
// taken from the caller, so resubmitting a request can't overwrite a record.
func New(insuredID string, scheduleID int, countryISO string, now time.Time) (*Appointment, error) {
	a := &Appointment{
		ID:         uuid.NewString(),
		InsuredID:  insuredID,
		ScheduleID: scheduleID,
		CountryISO: countryISO,
		Status:     StatusPending,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// FromSnapshot rehydrates an appointment from a store row or a message body.
// Validation runs on every materialization, so a corrupted or tampered
// record is caught at every hop, not only at the origin.
func FromSnapshot(snap Appointment) (*Appointment, error) {
	a := snap
	if a.ID == "" {
		return nil, faults.Invalid("appointment id is required")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate enforces the entity invariants.
func (a *Appointment) Validate() error {
	if len(a.InsuredID) != 5 || !allDigits(a.InsuredID) {
		return faults.Invalid("InsuredId must be a 5-digit string")
	}
	if a.ScheduleID <= 0 {
		return faults.Invalid("ScheduleId must be a positive number")
	}
	if !IsSupportedCountry(a.CountryISO) {
		return &faults.UnsupportedJurisdictionError{CountryISO: a.CountryISO}
	}
	switch a.Status {
	case StatusPending, StatusCompleted, StatusFailed:
	default:
		return faults.Invalid("invalid appointment status %q", a.Status)
	}
	return nil
}

// Complete transitions pending -> completed. Re-applying the same terminal
// transition is a no-op.
func (a *Appointment) Complete(now time.Time) error {
	return a.transition(StatusCompleted, now)
}

// Fail transitions pending -> failed. Re-applying the same terminal
// transition is a no-op.
func (a *Appointment) Fail(now time.Time) error {
	return a.transition(StatusFailed, now)
}

func (a *Appointment) transition(to string, now time.Time) error {
	if a.Status == to {
		// duplicate delivery of the same terminal event; updatedAt must not regress
		return nil
	}
	if a.Status != StatusPending {
		return faults.Invalid("appointment %s is already %s, cannot mark %s", a.ID, a.Status, to)
	}
	a.Status = to
	if now.UTC().After(a.UpdatedAt) {
		a.UpdatedAt = now.UTC()
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
