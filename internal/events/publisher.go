package events

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/aws"
	"github.com/medibook/appointment-saga/internal/faults"
)

// Publisher emits Created events to the SNS routing topic.
type Publisher struct {
	client   aws.SNSAPI
	topicARN string
}

// NewPublisher returns a Publisher bound to a topic ARN.
func NewPublisher(client aws.SNSAPI, topicARN string) *Publisher {
	return &Publisher{
		client:   client,
		topicARN: topicARN,
	}
}

// PublishCreated sends the full appointment snapshot with countryISO as a
// filterable message attribute, so the broker delivers it only to the lane
// whose subscription matches the jurisdiction.
func (p *Publisher) PublishCreated(ctx context.Context, a *appointment.Appointment) error {
	body, err := json.Marshal(a)
	if err != nil {
		return faults.Invalid("marshal created event for appointment %s: %v", a.ID, err)
	}

	message := string(body)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Message:  &message,
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			CountryAttribute: {
				DataType:    awsString("String"),
				StringValue: &a.CountryISO,
			},
		},
	})
	if err != nil {
		return faults.Transient(err, "publish created event for appointment %s", a.ID)
	}
	return nil
}

func awsString(s string) *string { return &s }
