package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/country"
	"github.com/medibook/appointment-saga/internal/faults"
	"github.com/medibook/appointment-saga/internal/schedule"
)

// --- fakes ---

type fakeSchedules struct {
	known map[int]*schedule.Schedule
	err   error
}

func (f *fakeSchedules) FindByID(ctx context.Context, id int) (*schedule.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.known[id]
	if !ok {
		return nil, faults.NotFound("Schedule with id %d not found", id)
	}
	return s, nil
}

type fakeLedger struct {
	rows map[string]*appointment.Appointment
}

func (f *fakeLedger) Upsert(ctx context.Context, a *appointment.Appointment) error {
	f.rows[a.ID] = a
	return nil
}

type fakeBus struct {
	completed []*appointment.Appointment
}

func (f *fakeBus) PublishCompleted(ctx context.Context, a *appointment.Appointment) error {
	f.completed = append(f.completed, a)
	return nil
}

func newTestProcessor(countryISO string, schedules *fakeSchedules) (*Processor, *fakeLedger, *fakeBus) {
	l := &fakeLedger{rows: map[string]*appointment.Appointment{}}
	b := &fakeBus{}
	p := NewProcessor(countryISO, country.Bundle{Schedules: schedules, Ledger: l, Bus: b}, nil)
	return p, l, b
}

func peSchedules() *fakeSchedules {
	return &fakeSchedules{known: map[int]*schedule.Schedule{
		678: {ID: 678, CenterID: 4, SpecialtyID: 3, MedicID: 2, Date: time.Now(), CountryISO: "PE"},
	}}
}

func sqsEvent(t *testing.T, a *appointment.Appointment) lambdaevents.SQSEvent {
	t.Helper()
	body, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return lambdaevents.SQSEvent{
		Records: []lambdaevents.SQSMessage{{MessageId: "m-1", Body: string(body)}},
	}
}

// --- tests ---

func TestProcessor_HappyPathEmitsCompleted(t *testing.T) {
	p, l, b := newTestProcessor("PE", peSchedules())

	a, _ := appointment.New("12345", 678, "PE", time.Now())
	if err := p.Handle(context.Background(), sqsEvent(t, a)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if _, ok := l.rows[a.ID]; !ok {
		t.Fatal("ledger row missing")
	}
	if len(b.completed) != 1 || b.completed[0].ID != a.ID {
		t.Fatalf("expected one completed event for %s, got %+v", a.ID, b.completed)
	}
}

func TestProcessor_UnknownScheduleIsPermanentAndSilent(t *testing.T) {
	p, l, b := newTestProcessor("PE", peSchedules())

	a, _ := appointment.New("12345", 999, "PE", time.Now())
	err := p.Handle(context.Background(), sqsEvent(t, a))
	if err == nil {
		t.Fatal("expected error for unknown schedule")
	}
	if !strings.Contains(err.Error(), "Schedule with id 999 not found") {
		t.Fatalf("unexpected error: %v", err)
	}
	if faults.IsRetryable(err) {
		t.Fatal("a missing schedule is permanent, not retryable")
	}
	if len(b.completed) != 0 {
		t.Fatal("no completed event may be emitted on failure")
	}
	if len(l.rows) != 0 {
		t.Fatal("no ledger row may be written on failure")
	}
}

func TestProcessor_DuplicateDeliveryNeverDuplicatesLedgerRow(t *testing.T) {
	p, l, _ := newTestProcessor("PE", peSchedules())

	a, _ := appointment.New("12345", 678, "PE", time.Now())
	ev := sqsEvent(t, a)
	for i := 0; i < 2; i++ {
		if err := p.Handle(context.Background(), ev); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}

	if len(l.rows) != 1 {
		t.Fatalf("duplicate delivery produced %d ledger rows", len(l.rows))
	}
}

func TestProcessor_RejectsWrongLane(t *testing.T) {
	p, l, b := newTestProcessor("PE", peSchedules())

	a, _ := appointment.New("12345", 678, "CL", time.Now())
	err := p.Handle(context.Background(), sqsEvent(t, a))
	if err == nil {
		t.Fatal("expected wrong-lane message to be rejected")
	}
	if !strings.Contains(err.Error(), "expected PE, received CL") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.rows) != 0 || len(b.completed) != 0 {
		t.Fatal("wrong-lane message must not be processed")
	}
}

func TestProcessor_MalformedBodyIsValidationFailure(t *testing.T) {
	p, _, b := newTestProcessor("PE", peSchedules())

	ev := lambdaevents.SQSEvent{
		Records: []lambdaevents.SQSMessage{{MessageId: "m-1", Body: "{not json"}},
	}
	err := p.Handle(context.Background(), ev)
	var ve *faults.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(b.completed) != 0 {
		t.Fatal("malformed message must not complete")
	}
}

func TestProcessor_TamperedSnapshotRejected(t *testing.T) {
	p, _, _ := newTestProcessor("PE", peSchedules())

	a, _ := appointment.New("12345", 678, "PE", time.Now())
	a.InsuredID = "123456" // corrupt after construction
	err := p.Handle(context.Background(), sqsEvent(t, a))
	var ve *faults.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestProcessor_TransientLookupFailurePropagatesRetryable(t *testing.T) {
	schedules := &fakeSchedules{err: faults.Transient(errors.New("timeout"), "query schedule")}
	p, _, b := newTestProcessor("PE", schedules)

	a, _ := appointment.New("12345", 678, "PE", time.Now())
	err := p.Handle(context.Background(), sqsEvent(t, a))
	if !faults.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if len(b.completed) != 0 {
		t.Fatal("no completed event on transient failure")
	}
}
