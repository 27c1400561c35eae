// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects a persistence implementation for the override and request
// stores.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
)

// Server captures process-level configuration.
type Server struct {
	Addr     string
	DataDir  string
	Backend  Backend
	Postgres PostgresConfig
	Redis    RedisConfig
	Notify   NotifyConfig
}

// PostgresConfig holds SQL store settings.
type PostgresConfig struct {
	DSN string
}

// RedisConfig holds Redis client settings. An empty URL disables Redis and
// the override store falls back to the primary backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NotifyConfig holds notification dispatch settings.
type NotifyConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("CASEGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	dataDir := os.Getenv("CASEGATE_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	backend := Backend(os.Getenv("CASEGATE_BACKEND"))
	switch backend {
	case BackendMemory, BackendFile, BackendPostgres:
	default:
		backend = BackendFile
	}

	topic := os.Getenv("CASEGATE_NOTIFY_TOPIC")
	if topic == "" {
		topic = "casegate.requests"
	}

	var brokers []string
	if raw := os.Getenv("CASEGATE_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:    addr,
		DataDir: dataDir,
		Backend: backend,
		Postgres: PostgresConfig{
			DSN: os.Getenv("CASEGATE_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("CASEGATE_REDIS_URL"),
			PoolSize:     envInt("CASEGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CASEGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Notify: NotifyConfig{
			Enabled: os.Getenv("CASEGATE_NOTIFY_ENABLED") == "true",
			Brokers: brokers,
			Topic:   topic,
		},
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
