// Package events carries appointment snapshots across the saga's two message
// channels: the SNS routing topic for Created and the EventBridge bus for
// Completed.
package events

import "encoding/json"

const (
	// Source identifies this system on the event bus.
	Source = "medical-appointment"
	// CompletedDetailType tags a completion event.
	CompletedDetailType = "appointment.completed"
	// CountryAttribute is the SNS message attribute the per-country queue
	// subscriptions filter on. Routing happens at the broker, never by
	// consumers inspecting payloads.
	CountryAttribute = "countryISO"
)

// Envelope is the EventBridge event shape as delivered to an SQS target.
// Detail stays raw so the listener can decode the snapshot after checking
// the detail-type.
type Envelope struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
}
