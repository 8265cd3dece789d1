package config

import (
	"os"
	"strings"
	"time"

	"github.com/fjod/go_bookstore/internal/catalog"
)

type Config struct {
	HTTPPort           string
	RedisAddr          string
	RedisPassword      string
	KafkaBrokers       []string
	OrdersTopic        string
	CatalogURL         string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	SessionTTL         time.Duration
	IdempotencyTTL     time.Duration
	MaxRequestBodySize int64
	LogLevel           string
}

// Load reads the environment. Unset or unparsable values fall back to the
// defaults; an empty KAFKA_BROKERS disables order publication.
func Load() Config {
	return Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitCSV(getEnv("KAFKA_BROKERS", "")),
		OrdersTopic:        getEnv("ORDERS_TOPIC", "orders.created"),
		CatalogURL:         getEnv("CATALOG_URL", catalog.DefaultSearchURL),
		RequestTimeout:     parseDuration(getEnv("REQUEST_TIMEOUT", ""), 30*time.Second),
		ShutdownTimeout:    parseDuration(getEnv("SHUTDOWN_TIMEOUT", ""), 10*time.Second),
		SessionTTL:         parseDuration(getEnv("SESSION_TTL", ""), 30*time.Minute),
		IdempotencyTTL:     parseDuration(getEnv("IDEMPOTENCY_TTL", ""), 24*time.Hour),
		MaxRequestBodySize: 1 << 20, // 1MB
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); strings.TrimSpace(value) != "" {
		return value
	}
	return defaultValue
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
