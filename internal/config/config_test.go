package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrderService_Defaults(t *testing.T) {
	cfg := LoadOrderService()

	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:8082", cfg.ProductBaseURL)
	assert.Equal(t, 3*time.Second, cfg.ValidatorTimeout)
	assert.Equal(t, []string{"localhost:9094"}, cfg.Bus.Brokers)
	assert.Equal(t, 3, cfg.Bus.RetryAttempts)
	assert.Equal(t, 2*time.Second, cfg.Bus.RetryDelay)
	require.NoError(t, cfg.Validate())
}

func TestLoadProductService_Defaults(t *testing.T) {
	cfg := LoadProductService()

	assert.Equal(t, ":8082", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "product-images", cfg.Minio.Bucket)
	require.NoError(t, cfg.Validate())
}

func TestLoadNotificationService_Defaults(t *testing.T) {
	cfg := LoadNotificationService()

	assert.Equal(t, "notification-group", cfg.Bus.GroupID)
	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("BUS_RETRY_DELAY", "500ms")
	t.Setenv("CACHE_TTL", "30m")

	orderCfg := LoadOrderService()
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, orderCfg.Bus.Brokers)
	assert.Equal(t, 500*time.Millisecond, orderCfg.Bus.RetryDelay)

	productCfg := LoadProductService()
	assert.Equal(t, 30*time.Minute, productCfg.Cache.TTL)
}

func TestEnvOverrides_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BUS_WORKERS", "not-a-number")
	t.Setenv("BUS_RETRY_DELAY", "soon")

	cfg := LoadOrderService()
	assert.Equal(t, 3, cfg.Bus.Workers)
	assert.Equal(t, 2*time.Second, cfg.Bus.RetryDelay)
}

func TestBusConfig_Validate(t *testing.T) {
	cfg := BusConfig{Type: "kafka", Brokers: []string{"localhost:9094"}, RetryAttempts: 3}
	assert.NoError(t, cfg.Validate())

	cfg.Brokers = nil
	assert.Error(t, cfg.Validate())

	cfg = BusConfig{Type: "carrier-pigeon", RetryAttempts: 3}
	assert.Error(t, cfg.Validate())

	cfg = BusConfig{Type: "inmemory", RetryAttempts: 0}
	assert.Error(t, cfg.Validate())
}

func TestOrderServiceConfig_Validate(t *testing.T) {
	cfg := LoadOrderService()
	cfg.ProductBaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = LoadOrderService()
	cfg.Postgres.DSN = ""
	assert.Error(t, cfg.Validate())
}
