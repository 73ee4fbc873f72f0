// Package observability provides the logging, metrics and tracing
// infrastructure shared by the auditor, the CLIs and the worker.
//
// Subpackages:
//   - logging: Structured logging utilities with slog and run IDs
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracer, helpers and HTTP middleware
//
// Example usage:
//
//	import (
//	    "feed-audit/internal/observability/logging"
//	    "feed-audit/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewCLILogger()
//	    logger.Info("audit started")
//
//	    metrics.RecordSourceAudited("feed", "ok", 3)
//	}
package observability
