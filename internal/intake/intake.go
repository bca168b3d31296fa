// Package intake accepts booking requests and kicks off asynchronous
// fulfillment. The synchronous answer is always an acknowledgment; the
// caller never waits for downstream completion.
package intake

import (
	"context"
	"log"
	"time"

	"github.com/medibook/appointment-saga/internal/appointment"
)

// Writer persists the initial Pending record.
type Writer interface {
	Put(ctx context.Context, a *appointment.Appointment) error
}

// CreatedPublisher routes the Created event to the matching country lane.
type CreatedPublisher interface {
	PublishCreated(ctx context.Context, a *appointment.Appointment) error
}

// Receipt is the synchronous acknowledgment returned to the caller.
type Receipt struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Intake orchestrates validate -> persist Pending -> publish Created.
type Intake struct {
	store   Writer
	broker  CreatedPublisher
	nowFunc func() time.Time
}

// New builds an Intake with injected collaborators.
func New(store Writer, broker CreatedPublisher) *Intake {
	return &Intake{
		store:   store,
		broker:  broker,
		nowFunc: time.Now,
	}
}

// Submit creates the Pending record and emits the Created event.
// Validation failure aborts before any write; a store failure aborts before
// publish. If the store write succeeds but the publish fails, the Pending
// record is orphaned: there is no compensating delete or outbox here, the
// error is surfaced and the record waits for manual reconciliation.
func (i *Intake) Submit(ctx context.Context, insuredID string, scheduleID int, countryISO string) (*Receipt, error) {
	a, err := appointment.New(insuredID, scheduleID, countryISO, i.nowFunc())
	if err != nil {
		return nil, err
	}

	if err := i.store.Put(ctx, a); err != nil {
		return nil, err
	}

	if err := i.broker.PublishCreated(ctx, a); err != nil {
		log.Printf("[intake] appointment %s persisted but created event not published: %v", a.ID, err)
		return nil, err
	}

	return &Receipt{
		ID:      a.ID,
		Status:  "success",
		Message: "Appointment scheduling is in progress",
	}, nil
}
