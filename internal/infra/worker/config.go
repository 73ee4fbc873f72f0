// Package worker holds the configuration, metrics and health server of the
// scheduled audit worker.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"feed-audit/internal/pkg/config"
)

// WorkerConfig controls when the worker audits the registry and where it
// writes the digests.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression.
	// Default: "0 6 * * *" (every day at 06:00)
	CronSchedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC"
	Timezone string

	// RunTimeout bounds one full registry audit. Range: 1m-4h
	// Default: 30 minutes
	RunTimeout time.Duration

	// HealthPort serves /health and /health/ready. Range: 1024-65535
	// Default: 9091
	HealthPort int

	// MetricsPort serves /metrics and /health/hosts. Range: 1024-65535
	// Default: 9090
	MetricsPort int

	// OutputDir receives digest-YYYY-MM-DD.{md,json,html}.
	// Default: "digests"
	OutputDir string

	// RunOnStart triggers one audit immediately after start-up.
	// Default: false
	RunOnStart bool
}

// DefaultConfig returns the worker defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 6 * * *",
		Timezone:     "UTC",
		RunTimeout:   30 * time.Minute,
		HealthPort:   9091,
		MetricsPort:  9090,
		OutputDir:    "digests",
		RunOnStart:   false,
	}
}

// Validate collects every invalid field into one error.
//
// Validation rules:
//   - CronSchedule: valid five-field cron expression
//   - Timezone: valid IANA name
//   - RunTimeout: > 0
//   - HealthPort, MetricsPort: 1024-65535 and distinct
//   - OutputDir: non-empty
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ, both are %d", c.HealthPort))
	}
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("output dir: cannot be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location returns the schedule timezone, or UTC when it cannot be loaded.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker configuration with the fail-open
// strategy: every invalid value is replaced by its default, logged and
// counted. The returned error is always nil.
//
// Environment variables:
//   - WORKER_CRON_SCHEDULE: cron expression (default: "0 6 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - WORKER_RUN_TIMEOUT: duration, 1m-4h (default: 30m)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - WORKER_METRICS_PORT: integer 1024-65535 (default: 9090)
//   - WORKER_OUTPUT_DIR: directory (default: "digests")
//   - WORKER_RUN_ON_START: boolean (default: false)
//
// A port collision after loading resets both ports to their defaults.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}

	fallbackApplied := false
	track := func(fell bool) {
		fallbackApplied = fallbackApplied || fell
	}

	var fell bool
	cfg.CronSchedule, fell = config.Apply(logger, cm, "cron_schedule",
		config.LoadEnvWithFallback("WORKER_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule))
	track(fell)

	cfg.Timezone, fell = config.Apply(logger, cm, "timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	track(fell)

	cfg.RunTimeout, fell = config.Apply(logger, cm, "run_timeout",
		config.LoadEnvDuration("WORKER_RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, time.Minute, 4*time.Hour)
		}))
	track(fell)

	port := func(v int) error { return config.ValidateIntRange(v, 1024, 65535) }

	cfg.HealthPort, fell = config.Apply(logger, cm, "health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, port))
	track(fell)

	cfg.MetricsPort, fell = config.Apply(logger, cm, "metrics_port",
		config.LoadEnvInt("WORKER_METRICS_PORT", cfg.MetricsPort, port))
	track(fell)

	if cfg.HealthPort == cfg.MetricsPort {
		defaults := DefaultConfig()
		logger.Warn("Configuration fallback applied",
			slog.String("field", "ports"),
			slog.String("warning", fmt.Sprintf("health and metrics ports collide on %d, falling back to defaults", cfg.HealthPort)))
		if cm != nil {
			cm.RecordValidationError("ports")
			cm.RecordFallback("ports")
		}
		cfg.HealthPort, cfg.MetricsPort = defaults.HealthPort, defaults.MetricsPort
		track(true)
	}

	cfg.OutputDir = config.LoadEnvString("WORKER_OUTPUT_DIR", cfg.OutputDir)

	cfg.RunOnStart, fell = config.Apply(logger, cm, "run_on_start",
		config.LoadEnvBool("WORKER_RUN_ON_START", cfg.RunOnStart))
	track(fell)

	if cm != nil {
		cm.SetFallbackActive(fallbackApplied)
		cm.RecordLoadTimestamp()
	}

	return &cfg, nil
}
