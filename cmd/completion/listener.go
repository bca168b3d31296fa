package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/medibook/appointment-saga/internal/appointment"
	appevents "github.com/medibook/appointment-saga/internal/events"
	"github.com/medibook/appointment-saga/internal/faults"
	"github.com/medibook/appointment-saga/internal/metrics"
)

// AppointmentStore is the slice of the store the listener needs.
type AppointmentStore interface {
	Get(ctx context.Context, id string) (*appointment.Appointment, error)
	Update(ctx context.Context, a *appointment.Appointment) (*appointment.Appointment, error)
}

// Listener moves appointments to their terminal Completed state when the
// completion event arrives.
type Listener struct {
	store   AppointmentStore
	grace   time.Duration
	metrics *metrics.Emitter
	nowFunc func() time.Time
}

// NewListener builds a Listener. grace bounds the wait for the intake write
// to become visible before an unknown id is treated as permanent.
func NewListener(store AppointmentStore, grace time.Duration, em *metrics.Emitter) *Listener {
	return &Listener{
		store:   store,
		grace:   grace,
		metrics: em,
		nowFunc: time.Now,
	}
}

// Handle receives the SQS batch fed by the EventBridge completion rule.
func (l *Listener) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := l.processRecord(ctx, rec); err != nil {
			log.Printf("[completion] %v", err)
			return err
		}
	}
	return nil
}

func (l *Listener) processRecord(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var env appevents.Envelope
	if err := json.Unmarshal([]byte(rec.Body), &env); err != nil {
		return faults.Invalid("invalid event envelope: %v", err)
	}
	if env.DetailType != appevents.CompletedDetailType {
		return faults.Invalid("unexpected detail-type %q", env.DetailType)
	}

	var snap appointment.Appointment
	if err := json.Unmarshal(env.Detail, &snap); err != nil {
		return faults.Invalid("invalid completion detail: %v", err)
	}
	if snap.ID == "" {
		return faults.Invalid("completion event missing appointment id")
	}

	a, err := l.store.Get(ctx, snap.ID)
	if err != nil {
		return err
	}
	if a == nil {
		// The completed event can outrun the intake write's visibility.
		// One re-read after a short grace, then the id is permanently unknown.
		select {
		case <-ctx.Done():
			return faults.Transient(ctx.Err(), "waiting for appointment %s", snap.ID)
		case <-time.After(l.grace):
		}
		a, err = l.store.Get(ctx, snap.ID)
		if err != nil {
			return err
		}
		if a == nil {
			return faults.NotFound("Appointment with id %s not found", snap.ID)
		}
	}

	if err := a.Complete(l.nowFunc()); err != nil {
		return err
	}
	if _, err := l.store.Update(ctx, a); err != nil {
		return err
	}

	l.metrics.Count(ctx, "AppointmentsCompleted", a.CountryISO)
	log.Printf("[completion] appointment %s marked as completed", a.ID)
	return nil
}
