// Package config loads the host application configuration from environment
// variables. The engine itself takes everything by injection; this is the
// wiring surface for cmd/aegis.
package config

import (
	"os"
	"strconv"
)

// Config holds host configuration.
type Config struct {
	StoreBackend string // memory | sqlite | postgres | redis
	DatabaseURL  string
	RedisAddr    string
	RedisDB      int
	PolicyPath   string // empty means built-in defaults
	OTLPEndpoint string
	LogLevel     string
	Telemetry    bool
}

// Load reads configuration from environment variables with development
// defaults.
func Load() *Config {
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "aegis.db"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	otlp := os.Getenv("OTLP_ENDPOINT")
	if otlp == "" {
		otlp = "localhost:4317"
	}

	return &Config{
		StoreBackend: backend,
		DatabaseURL:  dbURL,
		RedisAddr:    redisAddr,
		RedisDB:      redisDB,
		PolicyPath:   os.Getenv("POLICY_BUNDLE"),
		OTLPEndpoint: otlp,
		LogLevel:     logLevel,
		Telemetry:    os.Getenv("TELEMETRY") == "true",
	}
}
