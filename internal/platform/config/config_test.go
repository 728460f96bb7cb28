package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Ledger.Backend)
	assert.Equal(t, 2000, cfg.Ledger.Capacity)
	assert.Equal(t, uint(3), cfg.Retry.Attempts)
	assert.Equal(t, 30*time.Second, cfg.Breaker.Timeout)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
ledger:
  backend: postgres
  trace: true
postgres:
  dsn: postgres://file/db
policy:
  default: lender
`), 0o600))

	t.Setenv("ASSETCORE_POSTGRES_DSN", "postgres://env/db")
	t.Setenv("ASSETCORE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, BackendPostgres, cfg.Ledger.Backend)
	assert.True(t, cfg.Ledger.Trace)
	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "lender", cfg.Policy.Default)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"memory is valid", func(*Config) {}, ""},
		{"postgres needs dsn", func(c *Config) { c.Ledger.Backend = BackendPostgres }, "postgres.dsn"},
		{"redis needs url", func(c *Config) { c.Ledger.Backend = BackendRedis }, "redis.url"},
		{"unknown backend", func(c *Config) { c.Ledger.Backend = "sqlite" }, "unknown ledger.backend"},
		{"retry attempts", func(c *Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
		{"kafka topic", func(c *Config) { c.Kafka.Brokers = []string{"localhost:9092"}; c.Kafka.Topic = "" }, "kafka.topic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Ledger: LedgerConfig{Backend: BackendMemory},
				Retry:  RetryConfig{Attempts: 1},
				Kafka:  KafkaConfig{Topic: "t"},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
