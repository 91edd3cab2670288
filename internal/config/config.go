package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// External collaborators
	PublisherBaseURL      string
	PublisherTimeout      time.Duration
	AccountServiceBaseURL string
	AccountServiceTimeout time.Duration
	AuthzBaseURL          string
	AuthzTimeout          time.Duration

	// CascadeBlockAccess makes a rejection-triggered account purge also
	// block the submitter's email domain and IP. Set true in production,
	// false in staging so test accounts are never permanently blacklisted.
	CascadeBlockAccess bool

	// Rate limiting: maximum decisions per second per moderator
	DecisionRateLimit int

	// Retention sweeper
	SweepInterval  time.Duration
	SweepRetention time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		PublisherBaseURL:      getEnv("PUBLISHER_BASE_URL", "http://localhost:9101"),
		PublisherTimeout:      getDuration("PUBLISHER_TIMEOUT", 10*time.Second),
		AccountServiceBaseURL: getEnv("ACCOUNT_SERVICE_BASE_URL", "http://localhost:9102"),
		AccountServiceTimeout: getDuration("ACCOUNT_SERVICE_TIMEOUT", 15*time.Second),
		AuthzBaseURL:          getEnv("AUTHZ_BASE_URL", "http://localhost:9103"),
		AuthzTimeout:          getDuration("AUTHZ_TIMEOUT", 5*time.Second),

		CascadeBlockAccess: getBool("CASCADE_BLOCK_ACCESS", false),

		DecisionRateLimit: getInt("DECISION_RATE_LIMIT", 10),

		SweepInterval:  getDuration("SWEEP_INTERVAL", 1*time.Minute),
		SweepRetention: getDuration("SWEEP_RETENTION", 24*time.Hour),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
