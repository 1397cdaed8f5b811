package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the delay tracker service
type Config struct {
	// Database
	DatabasePath string

	// Feed polling
	FeedURL      string
	ClientName   string
	PollInterval time.Duration
	RetryBackoff time.Duration
	FetchTimeout time.Duration

	// Poll snapshot log retention
	SnapshotRetention time.Duration

	// HTTP API
	Port        string
	StaticDir   string
	CORSOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first, with .env.local
// overriding it for local development.
func Load() *Config {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	return &Config{
		// Database
		DatabasePath: getEnv("SQLITE_DATABASE", "train_delays.db"),

		// Feed polling
		FeedURL:      getEnv("FEED_URL", "https://api.entur.io/realtime/v1/rest/vm"),
		ClientName:   getEnv("CLIENT_NAME", "kollektiv-forsinkelser"),
		PollInterval: time.Duration(getEnvInt("POLL_INTERVAL", 60)) * time.Second,
		RetryBackoff: time.Duration(getEnvInt("RETRY_BACKOFF", 10)) * time.Second,
		FetchTimeout: time.Duration(getEnvInt("FETCH_TIMEOUT", 10)) * time.Second,

		// Poll snapshot log retention
		SnapshotRetention: time.Duration(getEnvInt("SNAPSHOT_RETENTION_HOURS", 24)) * time.Hour,

		// HTTP API
		Port:        getEnv("PORT", "5000"),
		StaticDir:   getEnv("STATIC_DIR", ""),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "*"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
