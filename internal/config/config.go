package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	LogLevel string

	// Model registry
	ModelDir string

	// Combination thresholds — the demo models are replaceable, so the
	// mapping from raw scores to satisfaction must be tunable at runtime.
	SentimentThreshold float64

	// Analytics aggregation
	BucketWidth      time.Duration
	RetentionHorizon time.Duration

	// Insights generation
	AnthropicAPIKey  string
	AnthropicModel   string
	InsightsInterval time.Duration
	InsightsTimeout  time.Duration

	// Optional collaborators
	NatsURL     string
	NatsToken   string
	DatabaseURL string

	// Proxy
	ProxyPort   int
	UpstreamURL string
}

func Load() Config {
	return Config{
		Port:               envInt("TRIAGE_PORT", 8000),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		ModelDir:           envStr("TRIAGE_MODEL_DIR", "/var/lib/triage/models"),
		SentimentThreshold: envFloat("TRIAGE_SENTIMENT_THRESHOLD", 0.5),
		BucketWidth:        envDuration("TRIAGE_BUCKET_WIDTH", time.Minute),
		RetentionHorizon:   envDuration("TRIAGE_RETENTION_HORIZON", time.Hour),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     envStr("TRIAGE_INSIGHTS_MODEL", "claude-sonnet-4-20250514"),
		InsightsInterval:   envDuration("TRIAGE_INSIGHTS_INTERVAL", time.Minute),
		InsightsTimeout:    envDuration("TRIAGE_INSIGHTS_TIMEOUT", 5*time.Second),
		NatsURL:            envStr("NATS_URL", ""),
		NatsToken:          envStr("NATS_TOKEN", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		ProxyPort:          envInt("TRIAGE_PROXY_PORT", 8001),
		UpstreamURL:        envStr("TRIAGE_UPSTREAM_URL", "http://localhost:8000"),
	}
}

func envStr(key, fallback string) string {
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
