package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/medibook/appointment-saga/internal/appointment"
)

// Config is the process-wide configuration, loaded once and passed by
// reference. Each binary checks the fields it actually needs.
type Config struct {
	HTTPPort          string            // local dev server port
	AppointmentsTable string            // DynamoDB appointment store
	TopicARN          string            // SNS routing topic for Created events
	EventBusName      string            // EventBridge bus for Completed events
	QueueURL          string            // country queue, used by the local processor runner
	CountryDSN        map[string]string // per-jurisdiction Postgres DSNs
	CompletionGrace   time.Duration     // read-after-write grace before an unknown id is permanent
}

// Load reads the environment, with .env support for local runs.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		AppointmentsTable: os.Getenv("APPOINTMENTS_TABLE"),
		TopicARN:          os.Getenv("SNS_TOPIC_ARN"),
		EventBusName:      os.Getenv("EVENT_BUS_NAME"),
		QueueURL:          os.Getenv("QUEUE_URL"),
		CountryDSN:        map[string]string{},
		CompletionGrace:   getDuration("COMPLETION_GRACE", 2*time.Second),
	}

	for _, code := range appointment.SupportedCountries {
		if dsn := os.Getenv("POSTGRES_DSN_" + code); dsn != "" {
			cfg.CountryDSN[code] = dsn
		}
	}

	return cfg
}

// RequireCountryDSN returns the DSN for a jurisdiction or an error naming
// the missing variable.
func (c Config) RequireCountryDSN(countryISO string) (string, error) {
	dsn, ok := c.CountryDSN[countryISO]
	if !ok {
		return "", fmt.Errorf("POSTGRES_DSN_%s is required", countryISO)
	}
	return dsn, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
