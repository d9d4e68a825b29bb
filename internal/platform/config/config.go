package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"carebridge"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`

	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`

	NotificationTopic string `env:"NOTIFICATION_TOPIC" envDefault:"carebridge.notifications"`
	JWTSecret         string `env:"JWT_SECRET" envDefault:"dev-secret"`

	LockWait             time.Duration `env:"LOCK_WAIT" envDefault:"2s"`
	EscrowHold           time.Duration `env:"ESCROW_HOLD" envDefault:"48h"`
	PaymentDisputeWindow time.Duration `env:"PAYMENT_DISPUTE_WINDOW" envDefault:"168h"`
	EscrowPollInterval   time.Duration `env:"ESCROW_POLL_INTERVAL" envDefault:"5m"`
	EscrowBatchSize      int           `env:"ESCROW_BATCH_SIZE" envDefault:"100"`

	EnableEscrowRelease bool `env:"ENABLE_ESCROW_RELEASE" envDefault:"true"`
	EnableNotifications bool `env:"ENABLE_NOTIFICATIONS" envDefault:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
