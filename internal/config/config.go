package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Gateway    GatewayConfig
	Reconciler ReconcilerConfig
	NewRelic   NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GatewayConfig holds the mobile-money provider configuration.
type GatewayConfig struct {
	BaseURL     string
	APIToken    string
	CallbackURL string
	Currency    string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// ReconcilerConfig holds reconciliation loop configuration.
type ReconcilerConfig struct {
	PollInterval    time.Duration
	MaxPollAttempts int
	SweepInterval   time.Duration
	StaleAfter      time.Duration
	SweepBatchSize  int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "restaurant_pos"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Gateway: GatewayConfig{
			BaseURL:     getEnv("GATEWAY_BASE_URL", "https://api.payments.example.com"),
			APIToken:    getEnv("GATEWAY_API_TOKEN", ""),
			CallbackURL: getEnv("GATEWAY_CALLBACK_URL", "http://localhost:8080/v1/payments/webhook"),
			Currency:    getEnv("GATEWAY_CURRENCY", "UGX"),
			Timeout:     getDurationEnv("GATEWAY_TIMEOUT", 15*time.Second),
			MaxAttempts: getIntEnv("GATEWAY_MAX_ATTEMPTS", 3),
			Backoff:     getDurationEnv("GATEWAY_BACKOFF", 500*time.Millisecond),
		},
		Reconciler: ReconcilerConfig{
			PollInterval:    getDurationEnv("RECONCILER_POLL_INTERVAL", 2*time.Second),
			MaxPollAttempts: getIntEnv("RECONCILER_MAX_POLL_ATTEMPTS", 60),
			SweepInterval:   getDurationEnv("RECONCILER_SWEEP_INTERVAL", 30*time.Second),
			StaleAfter:      getDurationEnv("RECONCILER_STALE_AFTER", 3*time.Minute),
			SweepBatchSize:  getIntEnv("RECONCILER_SWEEP_BATCH_SIZE", 50),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "restaurant-pos-payments"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
