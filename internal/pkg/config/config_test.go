package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "STORE_DRIVER", "DB_PATH", "DATABASE_URL", "REDIS_ADDR", "IDEMPOTENCY_TTL",
	"RABBITMQ_URL", "RABBITMQ_QUEUE", "CHANNEL_POOL_SIZE", "IDEMPOTENCY_CACHE_SIZE", "DELIVERY_FEE",
	"ENFORCE_STATUS_TRANSITIONS", "API_BASE_URL", "REQUEST_TIMEOUT",
	"OTEL_SERVICE_NAME", "OTEL_EXPORTER_OTLP_ENDPOINT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("order-api")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "./data/orders.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "kitchen_orders", cfg.RabbitMQQueue)
	assert.Equal(t, 4, cfg.ChannelPoolSize)
	assert.Equal(t, 10000, cfg.IdempotencyCacheSize)
	assert.True(t, cfg.EnforceStatusTransitions)
	assert.True(t, cfg.DeliveryFee.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "order-api", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("ENFORCE_STATUS_TRANSITIONS", "false")
	t.Setenv("DELIVERY_FEE", "2500.50")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("CHANNEL_POOL_SIZE", "8")
	t.Setenv("IDEMPOTENCY_CACHE_SIZE", "500")

	cfg, err := Load("order-api")
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.False(t, cfg.EnforceStatusTransitions)
	assert.Equal(t, "2500.5", cfg.DeliveryFee.String())
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 8, cfg.ChannelPoolSize)
	assert.Equal(t, 500, cfg.IdempotencyCacheSize)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mysql"}},
		{"bad duration", map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{"bad bool", map[string]string{"ENFORCE_STATUS_TRANSITIONS": "maybe"}},
		{"bad int", map[string]string{"CHANNEL_POOL_SIZE": "four"}},
		{"negative fee", map[string]string{"DELIVERY_FEE": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("order-api")
			assert.Error(t, err)
		})
	}
}
