package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	RedisURL    string
	RedisPrefix string
	// How often ConfigSync polls the meta sheet.
	PollInterval time.Duration
	Debug        bool
	// Ingestion job. Empty command disables the runner.
	IngestCmd      string
	IngestInterval time.Duration
}

func Load() Config {
	return Config{
		Addr:           getenv("API_ADDR", ":"+getenv("PORT", "3000")),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:    getenv("REDIS_PREFIX", ""),
		PollInterval:   time.Duration(getenvInt("POLL_INTERVAL", 300000)) * time.Millisecond,
		Debug:          getenv("DEBUG", getenv("debug", "")) != "",
		IngestCmd:      getenv("INGEST_CMD", ""),
		IngestInterval: time.Duration(getenvInt("INGEST_INTERVAL", 60000)) * time.Millisecond,
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
