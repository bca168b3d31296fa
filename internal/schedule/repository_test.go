package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medibook/appointment-saga/internal/faults"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeQuerier struct {
	row pgx.Row
}

func (q fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.row
}

func TestFindByID_Found(t *testing.T) {
	date := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)
	q := fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*int) = 678
		*dest[1].(*int) = 4
		*dest[2].(*int) = 3
		*dest[3].(*int) = 2
		*dest[4].(*time.Time) = date
		return nil
	}}}

	repo := NewRepository(q, "PE")
	s, err := repo.FindByID(context.Background(), 678)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != 678 || s.CountryISO != "PE" || !s.Date.Equal(date) {
		t.Fatalf("schedule mismatch: %+v", s)
	}
}

func TestFindByID_NotFoundIsPermanent(t *testing.T) {
	q := fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		return pgx.ErrNoRows
	}}}

	repo := NewRepository(q, "PE")
	_, err := repo.FindByID(context.Background(), 999)

	var nf *faults.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Error() != "Schedule with id 999 not found" {
		t.Fatalf("unexpected message: %q", nf.Error())
	}
	if faults.IsRetryable(err) {
		t.Fatal("a missing schedule must not be retried")
	}
}

func TestFindByID_UnavailableStoreIsTransient(t *testing.T) {
	q := fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		return errors.New("connection refused")
	}}}

	repo := NewRepository(q, "PE")
	_, err := repo.FindByID(context.Background(), 678)
	if !faults.IsRetryable(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestFindByID_MalformedRowRejected(t *testing.T) {
	q := fakeQuerier{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*int) = 678
		// center/specialty/medic left zero
		return nil
	}}}

	repo := NewRepository(q, "PE")
	_, err := repo.FindByID(context.Background(), 678)
	var ve *faults.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
