// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats
//   - Run ID propagation for audit runs
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "feed-audit/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewCLILogger()
//	    slog.SetDefault(logger)
//	}
//
//	func run(ctx context.Context) {
//	    ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	    logger := logging.WithRunID(ctx, slog.Default())
//	    logger.Info("audit started")
//	}
package logging
