package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/medibook/appointment-saga/internal/appointment"
	"github.com/medibook/appointment-saga/internal/aws"
	"github.com/medibook/appointment-saga/internal/config"
	appevents "github.com/medibook/appointment-saga/internal/events"
	"github.com/medibook/appointment-saga/internal/handlers"
	"github.com/medibook/appointment-saga/internal/intake"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterAppointmentRoutes(r, cfg)

	return r
}

func main() {
	appCfg := config.Load()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := appointment.NewStore(clients.DynamoDB, appCfg.AppointmentsTable)
	publisher := appevents.NewPublisher(clients.SNS, appCfg.TopicARN)

	cfg := handlers.HandlerConfig{
		Intake:       intake.New(store, publisher),
		Appointments: store,
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":" + appCfg.HTTPPort
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
