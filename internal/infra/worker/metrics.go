package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"feed-audit/internal/pkg/config"
)

// WorkerMetrics provides Prometheus metrics for scheduled audit runs. It
// embeds ConfigMetrics for the worker_config_* family.
//
// Worker-specific metrics:
//   - worker_audit_runs_total{status}: runs by status (started, success, failure)
//   - worker_audit_duration_seconds: run duration histogram
//   - worker_audit_entities_total: entities audited across all runs
//   - worker_audit_active_entities: entities with at least one recent post in the last run
//   - worker_audit_last_success_timestamp: Unix time of the last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	RunsTotal            *prometheus.CounterVec
	DurationSeconds      prometheus.Histogram
	EntitiesTotal        prometheus.Counter
	ActiveEntities       prometheus.Gauge
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker metrics on the default registry.
// Call it once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return NewWorkerMetricsWith(prometheus.DefaultRegisterer)
}

// NewWorkerMetricsWith registers the worker metrics on reg.
func NewWorkerMetricsWith(reg prometheus.Registerer) *WorkerMetrics {
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(reg, "worker"),

		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_audit_runs_total",
			Help: "Total number of scheduled audit runs by status (started/success/failure)",
		}, []string{"status"}),

		DurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_audit_duration_seconds",
			Help:    "Duration of scheduled audit runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s .. 30m
		}),

		EntitiesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_audit_entities_total",
			Help: "Total number of entities audited across all scheduled runs",
		}),

		ActiveEntities: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_audit_active_entities",
			Help: "Entities with at least one post inside the window in the last run",
		}),

		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_audit_last_success_timestamp",
			Help: "Unix timestamp of the last successful scheduled audit run",
		}),
	}
}

// RecordJobRun increments the run counter for status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of one run.
func (m *WorkerMetrics) RecordJobDuration(d time.Duration) {
	m.DurationSeconds.Observe(d.Seconds())
}

// RecordEntities adds audited to the entity counter and sets the active gauge.
func (m *WorkerMetrics) RecordEntities(audited, active int) {
	m.EntitiesTotal.Add(float64(audited))
	m.ActiveEntities.Set(float64(active))
}

// RecordLastSuccess stamps the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
