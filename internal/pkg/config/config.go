// Package config reads the process environment once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port string

	StoreDriver string
	DBPath      string
	DatabaseURL string

	RedisAddr            string
	IdempotencyTTL       time.Duration
	IdempotencyCacheSize int

	RabbitMQURL     string
	RabbitMQQueue   string
	ChannelPoolSize int

	EnforceStatusTransitions bool

	DeliveryFee    decimal.Decimal
	APIBaseURL     string
	RequestTimeout time.Duration

	ServiceName  string
	OTLPEndpoint string
	LogLevel     string
}

// Load reads every setting, falling back to defaults for unset variables.
// serviceName is used when OTEL_SERVICE_NAME is unset.
func Load(serviceName string) (Config, error) {
	var err error
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverSQLite),
		DBPath:        getEnv("DB_PATH", "./data/orders.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "kitchen_orders"),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:8080"),
		ServiceName:   getEnv("OTEL_SERVICE_NAME", serviceName),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyCacheSize, err = getInt("IDEMPOTENCY_CACHE_SIZE", 10000); err != nil {
		return Config{}, err
	}
	if cfg.ChannelPoolSize, err = getInt("CHANNEL_POOL_SIZE", 4); err != nil {
		return Config{}, err
	}
	if cfg.EnforceStatusTransitions, err = getBool("ENFORCE_STATUS_TRANSITIONS", true); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryFee, err = getDecimal("DELIVERY_FEE", decimal.NewFromInt(3000)); err != nil {
		return Config{}, err
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("config: DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	default:
		return Config{}, fmt.Errorf("config: STORE_DRIVER must be %s or %s, got %q", DriverSQLite, DriverPostgres, cfg.StoreDriver)
	}
	if cfg.DeliveryFee.IsNegative() {
		return Config{}, fmt.Errorf("config: DELIVERY_FEE must not be negative, got %s", cfg.DeliveryFee)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
