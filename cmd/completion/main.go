package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/aws"
	"github.com/medibook/appointment-saga/internal/config"
	"github.com/medibook/appointment-saga/internal/metrics"
)

func main() {
	cfg := config.Load()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := appointment.NewStore(clients.DynamoDB, cfg.AppointmentsTable)
	l := NewListener(store, cfg.CompletionGrace, metrics.NewEmitter(clients.CloudWatch, "AppointmentSaga/Completion"))

	lambda.Start(l.Handle)
}
