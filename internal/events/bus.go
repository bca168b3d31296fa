package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/aws"
	"github.com/medibook/appointment-saga/internal/faults"
)

// Bus emits Completed events to the EventBridge bus.
type Bus struct {
	client  aws.EventBridgeAPI
	busName string
}

// NewBus returns a Bus bound to an event bus name.
func NewBus(client aws.EventBridgeAPI, busName string) *Bus {
	return &Bus{
		client:  client,
		busName: busName,
	}
}

// PublishCompleted puts a single appointment.completed event carrying the
// full snapshot as its detail.
func (b *Bus) PublishCompleted(ctx context.Context, a *appointment.Appointment) error {
	detail, err := json.Marshal(a)
	if err != nil {
		return faults.Invalid("marshal completed event for appointment %s: %v", a.ID, err)
	}

	out, err := b.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{
			{
				Source:       awsString(Source),
				DetailType:   awsString(CompletedDetailType),
				Detail:       awsString(string(detail)),
				EventBusName: &b.busName,
			},
		},
	})
	if err != nil {
		return faults.Transient(err, "publish completed event for appointment %s", a.ID)
	}
	if out.FailedEntryCount > 0 {
		return faults.Transient(fmt.Errorf("%d entries failed", out.FailedEntryCount),
			"publish completed event for appointment %s", a.ID)
	}
	return nil
}
