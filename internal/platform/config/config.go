package config

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Server captures process-level configuration. Every knob is an explicit
// field populated from the environment; services receive values through
// constructors, never through package-level lookups.
type Server struct {
	Addr string

	// DefaultStatuteID is the statute the resolver falls back to when no
	// jurisdiction hint is given. uuid.Nil means unconfigured and the
	// resolver reports not_configured.
	DefaultStatuteID uuid.UUID

	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	ShutdownTimeout time.Duration
}

// RedisConfig configures the holiday calendar backend. An empty URL disables
// Redis; due-date calculation then runs against an empty holiday set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures audit event publishing. Empty brokers disable the
// Kafka publisher; audit events then go to the log-only publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FOICORE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var defaultStatute uuid.UUID
	if raw := os.Getenv("FOICORE_DEFAULT_STATUTE_ID"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			defaultStatute = id
		}
	}

	topic := os.Getenv("FOICORE_AUDIT_TOPIC")
	if topic == "" {
		topic = "foicore.audit"
	}

	var brokers []string
	for _, b := range strings.Split(os.Getenv("FOICORE_KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return Server{
		Addr:             addr,
		DefaultStatuteID: defaultStatute,
		PostgresURL:      os.Getenv("FOICORE_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("FOICORE_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		ShutdownTimeout: 10 * time.Second,
	}
}
