package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Cache    CacheConfig
	API      APIConfig
	Tracing  TracingConfig
	Storage  string
	LogLevel slog.Level
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CacheConfig holds listing cache configuration (Redis).
// An empty RedisURL selects the in-process cache.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// APIConfig holds HTTP server configuration
type APIConfig struct {
	Port         int
	PageSize     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// TracingConfig holds OpenTelemetry configuration.
// An empty Endpoint disables export.
type TracingConfig struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAGE_SIZE: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("API_READ_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("API_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_WRITE_TIMEOUT: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %w", err)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	storage := strings.ToLower(getEnv("STORAGE", StoragePostgres))
	if storage != StoragePostgres && storage != StorageMemory {
		return nil, fmt.Errorf("invalid STORAGE: %s (must be 'postgres' or 'memory')", storage)
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "dashboard"),
			Password: getEnv("DB_PASSWORD", "dashboard"),
			DBName:   getEnv("DB_NAME", "invoices"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Cache: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			TTL:      cacheTTL,
		},
		API: APIConfig{
			Port:         apiPort,
			PageSize:     pageSize,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "invoice-dashboard"),
			SampleRatio: sampleRatio,
		},
		Storage:  storage,
		LogLevel: logLevel,
	}, nil
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
