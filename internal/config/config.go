// Package config provides environment-backed application configuration.
// A .env file is loaded by main via godotenv; every value here can be
// overridden by a plain environment variable and has a working default.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	Addr string

	// Retrieval pipeline.
	FAQPath      string
	Threshold    float64
	TopK         int
	IndexTimeout time.Duration

	// Providers.
	OllamaURL  string
	EmbedModel string
	AgentModel string

	// IndexLocation is a directory path for the SQLite backend, or a
	// redis:// URL (or host:port) for the Redis backend.
	IndexLocation string

	// Durable stores.
	AuditFile   string
	TicketsFile string

	// Security.
	JWTSecret string

	// Feature flags resolved once at startup.
	EnrichmentEnabled bool
	WatchSource       bool
}

// FromEnv builds a Config from the environment.
func FromEnv() *Config {
	return &Config{
		Addr:              getString("ADDR", ":8080"),
		FAQPath:           getString("FAQ_CSV", "data/faq.csv"),
		Threshold:         getFloat("FAQ_CONFIDENCE_THRESHOLD", 0.70),
		TopK:              getInt("FAQ_TOP_K", 5),
		IndexTimeout:      getDuration("INDEX_TIMEOUT", 5*time.Second),
		OllamaURL:         getString("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:        getString("LOCAL_EMB_MODEL", "nomic-embed-text"),
		AgentModel:        getString("AGENT_MODEL", "llama3.2"),
		IndexLocation:     getString("INDEX_PATH", "./index"),
		AuditFile:         getString("AUDIT_FILE", "data/audit_log.jsonl"),
		TicketsFile:       getString("TICKETS_FILE", "data/tickets.csv"),
		JWTSecret:         getString("JWT_SECRET", "changeme"),
		EnrichmentEnabled: getBool("ENRICHMENT_ENABLED", false),
		WatchSource:       getBool("WATCH_SOURCE", true),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
