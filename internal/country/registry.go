// Package country wires each supported jurisdiction to its collaborators.
package country

import (
	"context"
	"fmt"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/faults"
	"github.com/medibook/appointment-saga/internal/schedule"
)

// ScheduleFinder looks up a slot in a jurisdiction's directory.
type ScheduleFinder interface {
	FindByID(ctx context.Context, id int) (*schedule.Schedule, error)
}

// LedgerWriter records a processed appointment in a jurisdiction's ledger.
type LedgerWriter interface {
	Upsert(ctx context.Context, a *appointment.Appointment) error
}

// CompletedPublisher emits a Completed event.
type CompletedPublisher interface {
	PublishCompleted(ctx context.Context, a *appointment.Appointment) error
}

// Bundle groups one jurisdiction's collaborators.
type Bundle struct {
	Schedules ScheduleFinder
	Ledger    LedgerWriter
	Bus       CompletedPublisher
}

// Registry maps jurisdiction codes to their bundles. Codes are checked
// against the supported set once, at construction, so an unknown code fails
// at startup instead of deep inside a message handler.
type Registry struct {
	bundles map[string]Bundle
}

// NewRegistry validates and stores the bundle set.
func NewRegistry(bundles map[string]Bundle) (*Registry, error) {
	for code, b := range bundles {
		if !appointment.IsSupportedCountry(code) {
			return nil, fmt.Errorf("registry: unsupported country code %q", code)
		}
		if b.Schedules == nil || b.Ledger == nil || b.Bus == nil {
			return nil, fmt.Errorf("registry: incomplete bundle for country %q", code)
		}
	}
	return &Registry{bundles: bundles}, nil
}

// Resolve returns the bundle for a jurisdiction code.
func (r *Registry) Resolve(countryISO string) (Bundle, error) {
	b, ok := r.bundles[countryISO]
	if !ok {
		return Bundle{}, &faults.UnsupportedJurisdictionError{CountryISO: countryISO}
	}
	return b, nil
}
