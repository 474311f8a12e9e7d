// Package config holds the environment configuration for all binaries.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"PORT" envDefault:"3000"`

	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBUser     string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME"     envDefault:"employees"`
	DBPort     string `env:"DB_PORT"     envDefault:"5432"`
	DBSSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	// Optional: empty address disables the aggregate cache.
	RedisAddr string `env:"REDIS_ADDR"`

	// Optional: empty broker disables outbox relaying and the consumer.
	KafkaBroker        string        `env:"KAFKA_BROKER"`
	KafkaConsumerGroup string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"employee-audit"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"3s"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT"  envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT"  envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
