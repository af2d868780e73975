package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse_Defaults(t *testing.T) {
	cfg := parse(flag.NewFlagSet("test", flag.ContinueOnError), nil)

	assert.Equal(t, "localhost:8080", cfg.RunAddress)
	assert.Empty(t, cfg.DatabaseURI)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.AlertInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Nil(t, cfg.KafkaBrokers)
}

func TestParse_EnvOverridesFlags(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("ALERT_INTERVAL", "30s")
	t.Setenv("SESSION_TTL", "bogus")

	cfg := parse(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-a", ":7000", "-d", "postgres://x"})

	assert.Equal(t, ":9000", cfg.RunAddress)
	assert.Equal(t, "postgres://x", cfg.DatabaseURI)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.AlertInterval)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
}
