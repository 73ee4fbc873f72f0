// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created through the global tracer provider, so they are no-ops
// until a provider is installed with otel.SetTracerProvider.
//
// Features:
//   - A shared tracer for audit spans (entity, source, discovery, fetch)
//   - Error recording helpers
//   - Trace context injection into outbound feed requests
//   - HTTP middleware for the worker's health and metrics endpoints
//
// Example usage:
//
//	import "feed-audit/internal/observability/tracing"
//
//	func auditSource(ctx context.Context, url string) error {
//	    ctx, span := tracing.GetTracer().Start(ctx, "audit.source")
//	    defer span.End()
//	    err := fetch(ctx, url)
//	    tracing.RecordError(span, err)
//	    return err
//	}
package tracing
