package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("EVENT_BROKER", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "none", cfg.EventBroker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("EVENT_BROKER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg := Load()

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "kafka", cfg.EventBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("GRPC_PORT", "not-a-port")
	t.Setenv("ORDER_CACHE_TTL", "-5m")
	t.Setenv("MIGRATE_ON_START", "maybe")

	cfg := Load()

	assert.Equal(t, 8081, cfg.GRPCPort)
	assert.Equal(t, 10*time.Minute, cfg.OrderCacheTTL)
	assert.True(t, cfg.MigrateOnStart)
}
