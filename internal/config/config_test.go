package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "token"},
		Database: DatabaseConfig{DSN: "postgres://localhost/groupmate"},
		Backend:  BackendConfig{URL: "http://backend"},
		Calendar: CalendarConfig{MinDate: "2025-02-10", MaxDate: "2025-05-20"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "0 9 * * *", cfg.ReminderCron)
	assert.Equal(t, DispatcherConfig{Workers: 4, QueueSize: 256, MaxBatch: 100}, cfg.Dispatcher)
	require.NotNil(t, cfg.Sender.MaxRetries)
	assert.Equal(t, 3, *cfg.Sender.MaxRetries)
	assert.Equal(t, 4, cfg.Sender.Workers)
	assert.Equal(t, 512, cfg.Sender.QueueSize)
	assert.Equal(t, time.Second, cfg.Sender.RetryBackoff)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), cfg.Calendar.Min)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), cfg.Calendar.Max)
	assert.False(t, cfg.IsProduction())
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{"no token", func(c *Config) { c.Telegram.Token = "" }, "TELEGRAM_TOKEN"},
		{"no dsn", func(c *Config) { c.Database.DSN = "" }, "DB_DSN"},
		{"no backend", func(c *Config) { c.Backend.URL = "" }, "BACKEND_URL"},
		{"no calendar", func(c *Config) { c.Calendar.MaxDate = "" }, "CALENDAR_MIN_DATE and CALENDAR_MAX_DATE"},
		{"bad date", func(c *Config) { c.Calendar.MinDate = "10.02.2025" }, "invalid CALENDAR_MIN_DATE"},
		{"min after max", func(c *Config) { c.Calendar.MinDate = "2025-06-01" }, "is after"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "invalid TIMEZONE"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "push" }, "invalid RUN_MODE"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = "webhook" }, "WEBHOOK_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := Normalize(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNormalizeRunModeAliases(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = " Polling "
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)

	cfg = validConfig()
	cfg.Telegram.RunMode = "WEBHOOK"
	cfg.Webhook.URL = "https://bot.example.com/webhook"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
	assert.Equal(t, ":8080", cfg.Webhook.Listen)
}

func TestLoadFromYAMLWithEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
env: production
telegram:
  token: yaml-token
database:
  dsn: postgres://yaml
backend:
  url: http://yaml-backend
  timeout: 3s
calendar:
  min_date: "2025-02-10"
  max_date: "2025-05-20"
dispatcher:
  workers: 8
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))
	t.Setenv("BACKEND_URL", "http://env-backend")
	t.Setenv("SENDER_MAX_RETRIES", "5")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-token", cfg.Telegram.Token)
	assert.Equal(t, "http://env-backend", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 8, cfg.Dispatcher.Workers)
	assert.Equal(t, 5, *cfg.Sender.MaxRetries)
	assert.True(t, cfg.IsProduction())
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("DB_DSN", "postgres://env")
	t.Setenv("BACKEND_URL", "http://backend")
	t.Setenv("CALENDAR_MIN_DATE", "2025-02-10")
	t.Setenv("CALENDAR_MAX_DATE", "2025-05-20")
	t.Setenv("BACKEND_TIMEOUT", "2s")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "postgres://env", cfg.GetDBDSN())
	assert.Equal(t, 2*time.Second, cfg.Backend.Timeout)
}

func TestLoadFromBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unclosed"), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestNormalizeSenderRetries(t *testing.T) {
	retries := func(n int) *int { return &n }

	tests := []struct {
		name string
		in   *int
		want int
	}{
		{name: "unset", in: nil, want: 3},
		{name: "negative", in: retries(-1), want: 3},
		{name: "zero disables retries", in: retries(0), want: 0},
		{name: "explicit", in: retries(7), want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Sender.MaxRetries = tt.in
			require.NoError(t, Normalize(cfg))
			assert.Equal(t, tt.want, *cfg.Sender.MaxRetries)
		})
	}
}

func TestLoadFromEnvZeroRetries(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("DB_DSN", "postgres://env")
	t.Setenv("BACKEND_URL", "http://backend")
	t.Setenv("CALENDAR_MIN_DATE", "2025-02-10")
	t.Setenv("CALENDAR_MAX_DATE", "2025-05-20")
	t.Setenv("SENDER_MAX_RETRIES", "0")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0, *cfg.Sender.MaxRetries)
}
