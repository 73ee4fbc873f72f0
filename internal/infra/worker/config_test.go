package worker

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0 6 * * *", cfg.CronSchedule)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, "digests", cfg.OutputDir)
	assert.False(t, cfg.RunOnStart)
	assert.NoError(t, cfg.Validate())
}

func TestWorkerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*WorkerConfig)
		wantErr string
	}{
		{"bad cron", func(c *WorkerConfig) { c.CronSchedule = "every morning" }, "cron schedule"},
		{"empty cron", func(c *WorkerConfig) { c.CronSchedule = "" }, "cron schedule"},
		{"bad timezone", func(c *WorkerConfig) { c.Timezone = "Nowhere/Land" }, "timezone"},
		{"zero timeout", func(c *WorkerConfig) { c.RunTimeout = 0 }, "run timeout"},
		{"privileged health port", func(c *WorkerConfig) { c.HealthPort = 80 }, "health port"},
		{"metrics port too high", func(c *WorkerConfig) { c.MetricsPort = 70000 }, "metrics port"},
		{"ports collide", func(c *WorkerConfig) { c.MetricsPort = c.HealthPort }, "must differ"},
		{"empty output dir", func(c *WorkerConfig) { c.OutputDir = "" }, "output dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWorkerConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CronSchedule = "bad"
	cfg.Timezone = "bad"
	cfg.RunTimeout = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cron schedule")
	assert.Contains(t, err.Error(), "timezone")
	assert.Contains(t, err.Error(), "run timeout")
}

func TestWorkerConfig_Location(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Asia/Tokyo"
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	cfg.Timezone = "Nowhere/Land"
	assert.Equal(t, time.UTC, cfg.Location())
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestLoadConfigFromEnv_AllValid(t *testing.T) {
	t.Setenv("WORKER_CRON_SCHEDULE", "15 7 * * 1-5")
	t.Setenv("WORKER_TIMEZONE", "Europe/Berlin")
	t.Setenv("WORKER_RUN_TIMEOUT", "45m")
	t.Setenv("WORKER_HEALTH_PORT", "9191")
	t.Setenv("WORKER_METRICS_PORT", "9190")
	t.Setenv("WORKER_OUTPUT_DIR", "/var/lib/feed-audit")
	t.Setenv("WORKER_RUN_ON_START", "true")

	logger, buf := newTestLogger()
	metrics := NewWorkerMetricsWith(prometheus.NewRegistry())

	cfg, err := LoadConfigFromEnv(logger, metrics)
	require.NoError(t, err)

	assert.Equal(t, "15 7 * * 1-5", cfg.CronSchedule)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, 45*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 9191, cfg.HealthPort)
	assert.Equal(t, 9190, cfg.MetricsPort)
	assert.Equal(t, "/var/lib/feed-audit", cfg.OutputDir)
	assert.True(t, cfg.RunOnStart)

	assert.Empty(t, buf.String())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), float64(0))
}

func TestLoadConfigFromEnv_Unset(t *testing.T) {
	logger, _ := newTestLogger()

	cfg, err := LoadConfigFromEnv(logger, NewWorkerMetricsWith(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadConfigFromEnv_FailOpen(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
		field string
		check func(t *testing.T, cfg *WorkerConfig)
	}{
		{"cron", "WORKER_CRON_SCHEDULE", "invalid cron", "cron_schedule", func(t *testing.T, cfg *WorkerConfig) {
			assert.Equal(t, "0 6 * * *", cfg.CronSchedule)
		}},
		{"timezone", "WORKER_TIMEZONE", "Mars/Olympus", "timezone", func(t *testing.T, cfg *WorkerConfig) {
			assert.Equal(t, "UTC", cfg.Timezone)
		}},
		{"timeout too short", "WORKER_RUN_TIMEOUT", "10s", "run_timeout", func(t *testing.T, cfg *WorkerConfig) {
			assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
		}},
		{"timeout unparseable", "WORKER_RUN_TIMEOUT", "half an hour", "run_timeout", func(t *testing.T, cfg *WorkerConfig) {
			assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
		}},
		{"health port", "WORKER_HEALTH_PORT", "80", "health_port", func(t *testing.T, cfg *WorkerConfig) {
			assert.Equal(t, 9091, cfg.HealthPort)
		}},
		{"metrics port", "WORKER_METRICS_PORT", "port", "metrics_port", func(t *testing.T, cfg *WorkerConfig) {
			assert.Equal(t, 9090, cfg.MetricsPort)
		}},
		{"run on start", "WORKER_RUN_ON_START", "sometimes", "run_on_start", func(t *testing.T, cfg *WorkerConfig) {
			assert.False(t, cfg.RunOnStart)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			logger, buf := newTestLogger()
			metrics := NewWorkerMetricsWith(prometheus.NewRegistry())

			cfg, err := LoadConfigFromEnv(logger, metrics)
			require.NoError(t, err, "fail-open loader never errors")
			require.NotNil(t, cfg)
			tt.check(t, cfg)

			assert.NoError(t, cfg.Validate())
			assert.Contains(t, buf.String(), "Configuration fallback applied")
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ValidationErrorsTotal.WithLabelValues(tt.field)))
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues(tt.field)))
			assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbackActive))
		})
	}
}

func TestLoadConfigFromEnv_PortCollision(t *testing.T) {
	t.Setenv("WORKER_HEALTH_PORT", "9500")
	t.Setenv("WORKER_METRICS_PORT", "9500")
	logger, _ := newTestLogger()
	metrics := NewWorkerMetricsWith(prometheus.NewRegistry())

	cfg, err := LoadConfigFromEnv(logger, metrics)
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.HealthPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("ports")))
}

func TestLoadConfigFromEnv_NilMetrics(t *testing.T) {
	t.Setenv("WORKER_TIMEZONE", "bad")
	logger, _ := newTestLogger()

	cfg, err := LoadConfigFromEnv(logger, nil)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
}
