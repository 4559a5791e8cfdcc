package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// chdirTemp parks the test in an empty directory so LoadConfig only
// sees the config file the test writes. Global viper state is reset on
// the way in and out.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		_ = os.Chdir(old)
	})
	return dir
}

func writeConfigFile(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "logging:\n  level: debug\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, 25, cfg.Database.MaxOpenConns)
	require.Equal(t, 5*time.Second, cfg.Scheduler.GuardWait)
	require.Equal(t, 90, cfg.Scheduler.MaxQuerySpanDays)
	require.Equal(t, 30*time.Minute, cfg.Draft.TTL)
	require.Equal(t, time.Minute, cfg.Draft.JanitorInterval)
	require.Equal(t, 100, cfg.Outbox.BatchSize)
	require.Equal(t, 5*time.Second, cfg.Outbox.PollInterval)
	require.Equal(t, time.Hour, cfg.Outbox.CleanupInterval)
	require.Equal(t, 90, cfg.Audit.RetentionDays)
	require.Equal(t, 24*time.Hour, cfg.Audit.CleanupInterval)
	require.Equal(t, float64(100), cfg.RateLimit.RequestsPerSecond)
	require.Equal(t, 200, cfg.RateLimit.Burst)
	require.False(t, cfg.SMTP.Enabled)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Equal(t, "bookings@hospiq.io", cfg.SMTP.From)

	// the one value the file carried
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, `
server:
  port: 9090
  request_timeout: 45s
database:
  host: db.internal
  port: 5433
  user: scheduler
  name: scheduling
redis:
  enabled: true
  url: redis://cache:6379/0
scheduler:
  guard_wait: 2s
  max_query_span_days: 30
draft:
  ttl: 10m
cors:
  allowed_origins:
    - https://portal.hospiq.io
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, "scheduler", cfg.Database.User)
	require.Equal(t, "scheduling", cfg.Database.Name)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	require.Equal(t, 2*time.Second, cfg.Scheduler.GuardWait)
	require.Equal(t, 30, cfg.Scheduler.MaxQuerySpanDays)
	require.Equal(t, 10*time.Minute, cfg.Draft.TTL)
	require.Equal(t, []string{"https://portal.hospiq.io"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "server:\n  port: 9090\n")

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DRAFT_TTL", "5m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 5*time.Minute, cfg.Draft.TTL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := LoadConfig()
	require.ErrorContains(t, err, "failed to read config file")
}

func TestMaxQuerySpan(t *testing.T) {
	c := SchedulerConfig{MaxQuerySpanDays: 14}
	require.Equal(t, 14*24*time.Hour, c.MaxQuerySpan())

	c.MaxQuerySpanDays = 0
	require.Zero(t, c.MaxQuerySpan())
}

func TestOutboxConfigToWorkerConfig(t *testing.T) {
	c := OutboxConfig{BatchSize: 50, PollInterval: time.Second, CleanupInterval: time.Minute}
	wc := c.ToWorkerConfig()

	require.Equal(t, 50, wc.BatchSize)
	require.Equal(t, time.Second, wc.PollInterval)
	require.Equal(t, time.Minute, wc.CleanupInterval)
}
