// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"devicegate/internal/policy"
)

// Config captures everything the server needs at startup. Empty DatabaseURL
// or RedisURL selects the in-memory implementations (demo mode); empty
// KafkaBrokers disables the Kafka audit sink.
type Config struct {
	Addr string

	DatabaseURL string
	RedisURL    string

	VendorAPIKey string
	VendorRegion string

	RiskThreshold float64
	ReplayTTL     time.Duration

	KafkaBrokers []string
	AuditTopic   string

	AdminJWTKey string

	ShutdownTimeout time.Duration
}

// FromEnv reads configuration from the environment, applying development
// defaults where safe.
func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("DEVICEGATE_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		VendorAPIKey:    os.Getenv("FINGERPRINT_API_KEY"),
		VendorRegion:    getEnv("FINGERPRINT_REGION", "us"),
		RiskThreshold:   getFloat("RISK_THRESHOLD", policy.DefaultRiskThreshold),
		ReplayTTL:       getDuration("REPLAY_TTL", 10*time.Minute),
		AuditTopic:      getEnv("AUDIT_TOPIC", "devicegate.audit"),
		AdminJWTKey:     getEnv("ADMIN_JWT_KEY", "dev-secret-key-change-in-production"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
