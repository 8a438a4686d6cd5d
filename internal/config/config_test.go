package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	raw := `
api:
  base_url: "https://larek.example.com/api"
  timeout: 7s
storage:
  driver: "postgres"
  path: ".state"
postgres:
  user: "weblarek"
  password: "secret"
  host: "db"
  port: "5432"
  db_name: "weblarek"
  ssl_mode: "disable"
kafka:
  enabled: true
  brokers:
    - "broker-1:9092"
    - "broker-2:9092"
  topic: "storefront-events"
logger:
  level: "warn"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg := MustLoad(path)

	assert.Equal(t, "https://larek.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.API.Timeout)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "storefront-events", cfg.Kafka.Topic)
	assert.Equal(t, "warn", cfg.Logger.Level)
}
