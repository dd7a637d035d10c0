// Package config builds runtime configuration from environment variables
// so main stays lean. Every knob has a development-safe default; only the
// database URL is required for the postgres-backed deployment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// DatabaseURL selects the postgres stores; empty runs on the in-memory
	// stores (development and tests).
	DatabaseURL string

	Redis RedisConfig

	// KafkaBrokers enables the event publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// KnownFirmsPath overrides the embedded VC/PE reference list.
	KnownFirmsPath string

	// TeamCompanies seeds the pass-two scoring overlap set.
	TeamCompanies []string

	// Warm-intro rule thresholds.
	WarmStrengthThreshold float64
	WarmScoreThreshold    int

	// BatchConcurrency bounds in-flight items for all batch operations.
	BatchConcurrency int

	// ClassifierCacheTTL bounds categorization memoization.
	ClassifierCacheTTL time.Duration
}

// RedisConfig captures the optional shared-cache tier.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                  envOr("WARMPATH_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		KafkaTopic:            envOr("KAFKA_TOPIC", "warmpath.events"),
		KnownFirmsPath:        os.Getenv("KNOWN_FIRMS_PATH"),
		WarmStrengthThreshold: envFloat("WARM_STRENGTH_THRESHOLD", 0.7),
		WarmScoreThreshold:    envInt("WARM_SCORE_THRESHOLD", 50),
		BatchConcurrency:      envInt("BATCH_CONCURRENCY", 8),
		ClassifierCacheTTL:    envDuration("CLASSIFIER_CACHE_TTL", 24*time.Hour),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}
	if team := os.Getenv("TEAM_COMPANIES"); team != "" {
		cfg.TeamCompanies = splitList(team)
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
