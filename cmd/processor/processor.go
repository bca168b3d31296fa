package main

import (
	"context"
	"encoding/json"
	"log"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/country"
	"github.com/medibook/appointment-saga/internal/faults"
	"github.com/medibook/appointment-saga/internal/metrics"
)

// Processor consumes one jurisdiction's Created lane: validate the snapshot,
// look the schedule up, write the ledger, emit Completed. It performs no
// internal retries; any error propagates to the delivery layer, which owns
// backoff and dead-lettering.
type Processor struct {
	countryISO string
	schedules  country.ScheduleFinder
	ledger     country.LedgerWriter
	bus        country.CompletedPublisher
	metrics    *metrics.Emitter
}

// NewProcessor binds a processor to its jurisdiction's bundle.
func NewProcessor(countryISO string, b country.Bundle, em *metrics.Emitter) *Processor {
	return &Processor{
		countryISO: countryISO,
		schedules:  b.Schedules,
		ledger:     b.Ledger,
		bus:        b.Bus,
		metrics:    em,
	}
}

// Handle receives an SQS batch and processes each message. The first failure
// fails the batch; redelivered siblings are safe because the ledger write is
// an upsert and the Completed transition is idempotent.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			if faults.IsRetryable(err) {
				log.Printf("[%s] transient failure, leaving message for redelivery: %v", p.countryISO, err)
			} else {
				log.Printf("[%s] permanent failure, message will dead-letter after the retry budget: %v", p.countryISO, err)
			}
			p.metrics.Count(ctx, "MessagesFailed", p.countryISO)
			return err
		}
		p.metrics.Count(ctx, "MessagesProcessed", p.countryISO)
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var snap appointment.Appointment
	if err := json.Unmarshal([]byte(rec.Body), &snap); err != nil {
		return faults.Invalid("invalid message body: %v", err)
	}

	a, err := appointment.FromSnapshot(snap)
	if err != nil {
		return err
	}

	// The broker filters on the countryISO attribute; a message on the wrong
	// lane means that contract broke. Reject it rather than processing it
	// against another jurisdiction's stores.
	if a.CountryISO != p.countryISO {
		return faults.Invalid("invalid country in message: expected %s, received %s", p.countryISO, a.CountryISO)
	}

	if _, err := p.schedules.FindByID(ctx, a.ScheduleID); err != nil {
		return err
	}

	if err := p.ledger.Upsert(ctx, a); err != nil {
		return err
	}

	if err := p.bus.PublishCompleted(ctx, a); err != nil {
		return err
	}

	log.Printf("[%s] processed appointment %s (schedule %d)", p.countryISO, a.ID, a.ScheduleID)
	return nil
}
