// Package config loads runtime configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all settings for the ETL tools.
type Config struct {
	// Source
	PBFPath string

	// PostgreSQL
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	// SQLite (used when Store is "sqlite")
	Store      string // "postgres" or "sqlite"
	SQLitePath string

	// Processing
	BatchSize      int
	QueueDepth     int
	EnableParallel bool

	// API
	ListenAddr string

	// Logging
	LogLevel  string
	LogFormat string // "json" or "console"
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	// Missing .env is fine; env vars take precedence anyway.
	_ = godotenv.Load()

	return &Config{
		PBFPath: getEnv("OSM_FILE_PATH", "data/madagascar-latest.osm.pbf"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "lemurion"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),

		Store:      getEnv("STORE", "postgres"),
		SQLitePath: getEnv("SQLITE_DATABASE", "data/chorographer.db"),

		BatchSize:      getEnvInt("BATCH_SIZE", 1000),
		QueueDepth:     getEnvInt("PARALLEL_QUEUE_DEPTH", 10),
		EnableParallel: getEnvBool("ENABLE_PARALLEL_PIPELINE", true),

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// PostgresDSN builds the connection string for the Postgres store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
