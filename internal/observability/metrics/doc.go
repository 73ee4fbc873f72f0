// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Audit metrics (sources by outcome, entries, discovery methods)
//   - Transport metrics (fetch duration, TLS fallbacks, breaker rejections)
//   - Content enrichment metrics
//
// All metrics are automatically registered with the Prometheus default registry.
// The worker exposes them via the /metrics endpoint; the CLI can dump them to a
// textfile after a run.
//
// Example usage:
//
//	import "feed-audit/internal/observability/metrics"
//
//	func auditSource(role string) {
//	    start := time.Now()
//	    // ... fetch feed ...
//	    metrics.RecordFeedFetch(time.Since(start), true)
//	    metrics.RecordSourceAudited(role, "ok", 3)
//	}
package metrics
