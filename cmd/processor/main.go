package main

import (
	"context"
	"log"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/medibook/appointment-saga/internal/aws"
	"github.com/medibook/appointment-saga/internal/config"
	"github.com/medibook/appointment-saga/internal/country"
	"github.com/medibook/appointment-saga/internal/db"
	appevents "github.com/medibook/appointment-saga/internal/events"
	"github.com/medibook/appointment-saga/internal/ledger"
	"github.com/medibook/appointment-saga/internal/metrics"
	"github.com/medibook/appointment-saga/internal/schedule"
)

func main() {
	ctx := context.Background()

	countryISO := os.Getenv("COUNTRY_ISO")
	if countryISO == "" {
		log.Fatal("COUNTRY_ISO is required")
	}

	cfg := config.Load()

	clients, err := aws.NewAWSClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	dsn, err := cfg.RequireCountryDSN(countryISO)
	if err != nil {
		log.Fatal(err)
	}
	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect %s postgres: %v", countryISO, err)
	}
	defer pool.Close()

	registry, err := country.NewRegistry(map[string]country.Bundle{
		countryISO: {
			Schedules: schedule.NewRepository(pool, countryISO),
			Ledger:    ledger.New(pool, countryISO),
			Bus:       appevents.NewBus(clients.EventBridge, cfg.EventBusName),
		},
	})
	if err != nil {
		log.Fatalf("failed to build country registry: %v", err)
	}
	bundle, err := registry.Resolve(countryISO)
	if err != nil {
		log.Fatal(err)
	}

	p := NewProcessor(countryISO, bundle, metrics.NewEmitter(clients.CloudWatch, "AppointmentSaga/Processor"))

	// if RUN_LOCAL=true, poll the country queue directly instead of running
	// under the Lambda runtime.
	if os.Getenv("RUN_LOCAL") == "true" {
		if cfg.QueueURL == "" {
			log.Fatal("QUEUE_URL is required when RUN_LOCAL=true")
		}
		runLocal(ctx, clients.SQS, cfg.QueueURL, p)
		return
	}

	lambda.Start(p.Handle)
}

// runLocal drains the country queue with long polling, feeding messages
// through the same handler the Lambda runtime would invoke.
func runLocal(ctx context.Context, client aws.SQSAPI, queueURL string, p *Processor) {
	log.Printf("polling %s", queueURL)
	for {
		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            &queueURL,
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			log.Fatalf("receive message: %v", err)
		}

		for _, msg := range out.Messages {
			ev := lambdaevents.SQSEvent{
				Records: []lambdaevents.SQSMessage{
					{MessageId: deref(msg.MessageId), Body: deref(msg.Body)},
				},
			}
			if err := p.Handle(ctx, ev); err != nil {
				// leave the message for the queue's own redelivery
				continue
			}
			_, err := client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      &queueURL,
				ReceiptHandle: msg.ReceiptHandle,
			})
			if err != nil {
				log.Printf("delete message: %v", err)
			}
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
