package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL    string
	LogLevel       string
	LogFormat      string
	PrometheusPort string
	Port           string
	Pool           PoolConfig
}

// PoolConfig tunes the database/sql connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool mirrors the limits the service has always run with.
var DefaultPool = PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// Load loads configuration from environment variables, after reading an
// optional .env file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", "sqlite://todos.db"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		PrometheusPort: os.Getenv("PROMETHEUS_PORT"),
		Port:           getEnvOrDefault("PORT", "8080"),
		Pool:           DefaultPool,
	}
	if _, set := os.LookupEnv("PROMETHEUS_PORT"); !set {
		cfg.PrometheusPort = "9090"
	}

	var err error
	if cfg.Pool.MaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", DefaultPool.MaxOpenConns); err != nil {
		return nil, err
	}
	if cfg.Pool.MaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", DefaultPool.MaxIdleConns); err != nil {
		return nil, err
	}
	if v := os.Getenv("DB_CONN_MAX_LIFETIME"); v != "" {
		if cfg.Pool.ConnMaxLifetime, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("DB_CONN_MAX_LIFETIME must be a duration: %w", err)
		}
	}

	if _, _, err := ParseDatabaseURL(cfg.DatabaseURL); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
