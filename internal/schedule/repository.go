package schedule

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medibook/appointment-saga/internal/faults"
)

// Querier is the slice of pgxpool.Pool the repository needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository looks schedules up in a jurisdiction's directory database.
type Repository struct {
	db         Querier
	countryISO string
}

// NewRepository binds a repository to one jurisdiction's pool.
func NewRepository(db Querier, countryISO string) *Repository {
	return &Repository{db: db, countryISO: countryISO}
}

// FindByID fetches one schedule. An absent row is a permanent NotFoundError;
// an unreachable directory is a TransientError. The two are never conflated,
// because only the latter is worth redelivering.
func (r *Repository) FindByID(ctx context.Context, id int) (*Schedule, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, center_id, specialty_id, medic_id, date
		FROM schedules
		WHERE id = $1
	`, id)

	s := Schedule{CountryISO: r.countryISO}
	err := row.Scan(&s.ID, &s.CenterID, &s.SpecialtyID, &s.MedicID, &s.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faults.NotFound("Schedule with id %d not found", id)
		}
		return nil, faults.Transient(err, "query schedule %d", id)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
