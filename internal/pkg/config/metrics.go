package config

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics tracks configuration loading for one component. Metric names
// are prefixed with the component name:
//
//   - {component}_config_load_timestamp
//   - {component}_config_validation_errors_total{field}
//   - {component}_config_fallbacks_total{field}
//   - {component}_config_fallback_active
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge
}

// NewConfigMetrics registers the metrics on the default registry. Calling it
// twice with the same component name panics.
func NewConfigMetrics(component string) *ConfigMetrics {
	return newConfigMetrics(promauto.With(prometheus.DefaultRegisterer), component)
}

// NewConfigMetricsWith registers on reg, which lets tests use a private registry.
func NewConfigMetricsWith(reg prometheus.Registerer, component string) *ConfigMetrics {
	return newConfigMetrics(promauto.With(reg), component)
}

func newConfigMetrics(f promauto.Factory, component string) *ConfigMetrics {
	return &ConfigMetrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", component),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", component),
		}),
		ValidationErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_validation_errors_total", component),
			Help: fmt.Sprintf("Total number of %s configuration validation errors", component),
		}, []string{"field"}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", component),
			Help: fmt.Sprintf("Total number of %s configuration fallback operations", component),
		}, []string{"field"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", component),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", component),
		}),
	}
}

// RecordLoadTimestamp sets the load timestamp to now.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordValidationError counts one rejected value for field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts one default substituted for field.
func (m *ConfigMetrics) RecordFallback(field string) {
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive flags whether the running configuration contains any default
// substituted for an invalid value.
func (m *ConfigMetrics) SetFallbackActive(active bool) {
	if active {
		m.FallbackActive.Set(1)
		return
	}
	m.FallbackActive.Set(0)
}

// Apply records a loader result against field: it logs each warning and
// bumps the error and fallback counters. It returns the loaded value and
// whether a fallback was applied.
func Apply[T any](logger *slog.Logger, m *ConfigMetrics, field string, r Result[T]) (T, bool) {
	if !r.FallbackApplied {
		return r.Value, false
	}
	if m != nil {
		m.RecordValidationError(field)
		m.RecordFallback(field)
	}
	for _, w := range r.Warnings {
		logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", w))
	}
	return r.Value, true
}
