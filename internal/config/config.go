// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	Logger LoggerConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Metrics MetricsConfig

	Gateway GatewayConfig

	Settlement SettlementConfig
}

type LoggerConfig struct {
	Level string
}

type MetricsConfig struct {
	Enabled  bool
	Exporter string
	Endpoint string
}

// GatewayConfig selects and configures the payment/transfer processor.
type GatewayConfig struct {
	Provider  string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// SettlementConfig controls the payout re-drive job.
type SettlementConfig struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "contentry-ledger"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		Logger: LoggerConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},

		DBType:            getenv("DB_TYPE", "postgres"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_NAME", "ledger"),
		DBUser:            getenv("DB_USER", "ledger"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DB_CONN_MAX_IDLE_TIME", 600),

		Metrics: MetricsConfig{
			Enabled:  getenvBool("METRICS_ENABLED", false),
			Exporter: strings.ToLower(getenv("METRICS_EXPORTER", "grpc")),
			Endpoint: getenv("METRICS_ENDPOINT", "localhost:4317"),
		},

		Gateway: GatewayConfig{
			Provider:  strings.ToLower(getenv("GATEWAY_PROVIDER", "stripe")),
			SecretKey: strings.TrimSpace(getenv("GATEWAY_SECRET_KEY", "")),
			BaseURL:   getenv("GATEWAY_BASE_URL", ""),
			Timeout:   getenvDuration("GATEWAY_TIMEOUT", 30*time.Second),
		},

		Settlement: SettlementConfig{
			RunInterval: getenvDuration("SETTLEMENT_RUN_INTERVAL", time.Minute),
			JobTimeout:  getenvDuration("SETTLEMENT_JOB_TIMEOUT", 5*time.Minute),
		},
	}
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
