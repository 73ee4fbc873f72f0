// Package logging provides structured logging utilities using the standard library's log/slog package.
// It offers helper functions for creating loggers with consistent configuration and context propagation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewLogger creates a new structured logger with JSON output on stdout.
// The log level can be controlled via the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error
// Default level: info
func NewLogger() *slog.Logger {
	return New(os.Stdout, "json")
}

// NewTextLogger creates a new structured logger with human-readable text output.
// This is useful for local development and debugging.
func NewTextLogger() *slog.Logger {
	return New(os.Stdout, "text")
}

// NewCLILogger creates the logger used by the command line tools. It writes
// to stderr so stdout stays reserved for the report, and honours LOG_FORMAT
// ("json" or "text", default text).
func NewCLILogger() *slog.Logger {
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "text"
	}
	return New(os.Stderr, format)
}

// New creates a logger writing to w in the given format ("json" or "text").
func New(w io.Writer, format string) *slog.Logger {
	logLevel := ParseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{
		Level: logLevel,
		// Add source code location when debugging
		AddSource: logLevel <= slog.LevelDebug,
	}

	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRunID returns a fresh identifier for one audit run.
func NewRunID() string {
	return uuid.NewString()
}

// ContextWithRunID stores runID in ctx.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}

// RunIDFromContext returns the run ID stored in ctx, or "".
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDContextKey).(string); ok {
		return id
	}
	return ""
}

// WithRunID returns a new logger that includes the run ID from the context.
// This ties together every log line of one audit run.
func WithRunID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		return logger
	}
	return logger.With("run_id", runID)
}

// WithFields returns a new logger with additional structured fields.
// Fields are provided as key-value pairs.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
// This enables passing loggers through the application via context.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const (
	loggerContextKey contextKey = "logger"
	runIDContextKey  contextKey = "run_id"
)
