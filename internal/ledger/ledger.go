// Package ledger writes the per-jurisdiction durable record of successfully
// processed appointments. The ledger is an eventually-consistent replica; it
// is never the source of truth for status.
package ledger

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/faults"
)

// Execer is the slice of pgxpool.Pool the ledger needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ledger records processed appointments for one jurisdiction.
type Ledger struct {
	db         Execer
	countryISO string
}

// New binds a ledger to one jurisdiction's pool.
func New(db Execer, countryISO string) *Ledger {
	return &Ledger{db: db, countryISO: countryISO}
}

// Upsert writes the appointment keyed by id. A retried or duplicate message
// lands on the same row instead of creating a second one.
func (l *Ledger) Upsert(ctx context.Context, a *appointment.Appointment) error {
	_, err := l.db.Exec(ctx, `
		INSERT INTO appointments (id, insured_id, schedule_id, country_iso, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`, a.ID, a.InsuredID, a.ScheduleID, a.CountryISO, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return faults.Transient(err, "upsert %s ledger row for appointment %s", l.countryISO, a.ID)
	}
	return nil
}
