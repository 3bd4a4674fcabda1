package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  host: localhost\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "feed_digest", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "digests", cfg.RabbitMQ.RoutingKey)
	assert.Equal(t, "digest_events", cfg.RabbitMQ.QueueName)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Miniflux.Timeout)
	assert.Equal(t, 3, cfg.Miniflux.Retry.MaxAttempts)
	assert.Equal(t, 120*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.InitialDelay)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, int64(4), cfg.Scheduler.MaxConcurrent)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RunTimeout)
	assert.False(t, cfg.Scheduler.DisableStaleTasks)
	assert.Equal(t, "data/digests", cfg.Storage.DigestDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Push.ChunkDelay)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("FD_TEST_MINIFLUX_TOKEN", "secret-token")
	t.Setenv("FD_TEST_DB_PASSWORD", "hunter2")

	path := writeConfig(t, `
database:
  host: db
  port: 5432
  user: digest
  password: ${FD_TEST_DB_PASSWORD}
  dbname: digests
  sslmode: disable
rabbitmq:
  enabled: true
  exchange: custom
miniflux:
  base_url: https://rss.example.com
  api_token: ${FD_TEST_MINIFLUX_TOKEN}
  timeout: 5s
  retry:
    max_attempts: 5
scheduler:
  interval: 30s
  max_concurrent: 8
  timezone: Asia/Tokyo
  disable_stale_tasks: true
storage:
  digest_dir: /var/lib/digests
  timezone: Europe/Berlin
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hunter2", cfg.Database.Password)
	assert.Equal(t, "host=db port=5432 user=digest password=hunter2 dbname=digests sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "custom", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "digests", cfg.RabbitMQ.RoutingKey)
	assert.Equal(t, "https://rss.example.com", cfg.Miniflux.BaseURL)
	assert.Equal(t, "secret-token", cfg.Miniflux.APIToken)
	assert.Equal(t, 5*time.Second, cfg.Miniflux.Timeout)
	assert.Equal(t, 5, cfg.Miniflux.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.Equal(t, int64(8), cfg.Scheduler.MaxConcurrent)
	assert.Equal(t, "Asia/Tokyo", cfg.Scheduler.Timezone)
	assert.True(t, cfg.Scheduler.DisableStaleTasks)
	assert.Equal(t, "/var/lib/digests", cfg.Storage.DigestDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, "scheduler:\n  timezone: Mars/Olympus\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "database: [unterminated\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLocation(t *testing.T) {
	loc, err := Location("")
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Location("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	_, err = Location("Nowhere/Special")
	assert.Error(t, err)
}
