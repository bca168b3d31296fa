package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/medibook/appointment-saga/internal/aws"
)

// Emitter pushes saga counters to CloudWatch. A nil *Emitter is a no-op, so
// callers don't guard every count. Metric failures are logged, never allowed
// to fail the unit of work.
type Emitter struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewEmitter returns an Emitter for a metric namespace.
func NewEmitter(client aws.CloudWatchAPI, namespace string) *Emitter {
	return &Emitter{
		client:    client,
		namespace: namespace,
		nowFunc:   time.Now,
	}
}

// Count emits a single unit datum with a Country dimension.
func (e *Emitter) Count(ctx context.Context, name, countryISO string) {
	if e == nil {
		return
	}
	now := e.nowFunc()
	one := 1.0
	_, err := e.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &e.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: strPtr("Country"), Value: &countryISO},
				},
			},
		},
	})
	if err != nil {
		log.Printf("[metrics] put %s: %v", name, err)
	}
}

func strPtr(s string) *string { return &s }
