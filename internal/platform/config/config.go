// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a development default; production deployments
// override via COFFER_* variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full server configuration.
type Config struct {
	Addr          string
	JWTSigningKey string
	StoreBackend  string // "memory" or "postgres"

	// TreasuryAccount is the ledger account holding vault escrow funds.
	TreasuryAccount string

	// MaxOpenVaults caps open vaults per account.
	MaxOpenVaults int
	// MaxDelegates caps the delegate set per account.
	MaxDelegates int
	// HighValueGoalThreshold triggers a high_value_goal event for batch-opened
	// vaults at or above this goal amount (smallest currency unit).
	HighValueGoalThreshold int64

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig holds SQL store settings.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds the replay-guard backend settings. An empty URL disables
// the Redis guard and falls back to the in-memory one.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ReplayTTL    time.Duration
}

// KafkaConfig holds contract-event streaming settings. Empty brokers disable
// the Kafka publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:                   envStr("COFFER_ADDR", ":8080"),
		JWTSigningKey:          envStr("COFFER_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		StoreBackend:           envStr("COFFER_STORE_BACKEND", "memory"),
		TreasuryAccount:        envStr("COFFER_TREASURY_ACCOUNT", "treasury"),
		MaxOpenVaults:          envInt("COFFER_MAX_OPEN_VAULTS", 5),
		MaxDelegates:           envInt("COFFER_MAX_DELEGATES", 5),
		HighValueGoalThreshold: envInt64("COFFER_HIGH_VALUE_GOAL", 1_000_000_000_000),
		Postgres: PostgresConfig{
			DSN:             os.Getenv("COFFER_POSTGRES_DSN"),
			MaxOpenConns:    envInt("COFFER_POSTGRES_MAX_CONNS", 10),
			ConnMaxLifetime: envDuration("COFFER_POSTGRES_CONN_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("COFFER_REDIS_URL"),
			PoolSize:     envInt("COFFER_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("COFFER_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("COFFER_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("COFFER_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("COFFER_REDIS_WRITE_TIMEOUT", 3*time.Second),
			ReplayTTL:    envDuration("COFFER_REPLAY_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: envList("COFFER_KAFKA_BROKERS"),
			Topic:   envStr("COFFER_KAFKA_TOPIC", "coffer.policy.events"),
		},
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
