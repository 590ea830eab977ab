package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Redis (deposit-slip cache)
	RedisURL     string
	SlipCacheTTL time.Duration

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// External registries
	SlipRegistryURL      string
	SlipRegistryToken    string
	PaymentRegistryURL   string
	PaymentRegistryToken string

	// Background Workers
	WorkerCount int

	// Statement archive
	StoragePath string

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey string
	FromEmail    string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		SlipCacheTTL:         time.Duration(getEnvAsInt("SLIP_CACHE_TTL_MINUTES", 15)) * time.Minute,
		JWTSecret:            getEnv("JWT_SECRET", ""),
		JWTExpirationHours:   getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		SlipRegistryURL:      getEnv("SLIP_REGISTRY_URL", ""),
		SlipRegistryToken:    getEnv("SLIP_REGISTRY_TOKEN", ""),
		PaymentRegistryURL:   getEnv("PAYMENT_REGISTRY_URL", ""),
		PaymentRegistryToken: getEnv("PAYMENT_REGISTRY_TOKEN", ""),
		WorkerCount:          getEnvAsInt("WORKER_COUNT", 5),
		StoragePath:          getEnv("STORAGE_PATH", "./storage"),
		AllowedOrigins:       getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		FromEmail:            getEnv("FROM_EMAIL", "noreply@crediplus.app"),
		SentryDSN:            getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.SlipRegistryURL == "" {
		return nil, fmt.Errorf("SLIP_REGISTRY_URL is required")
	}

	if cfg.PaymentRegistryURL == "" {
		return nil, fmt.Errorf("PAYMENT_REGISTRY_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
