// Package retry runs an operation a bounded number of times and holds the
// error classifiers that decide whether a failure deserves another attempt.
// Attempts follow each other immediately.
package retry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the maximum number of attempts, the first included
	MaxAttempts int

	// Retryable classifies errors; nil retries every error
	Retryable func(error) bool
}

// TLSFallbackConfig returns the configuration for the one-shot TLS
// relaxation: a single immediate second attempt, taken only when the first
// attempt failed certificate verification. The caller switches to an
// unverified transport on attempt 2.
func TLSFallbackConfig() Config {
	return Config{
		MaxAttempts: 2,
		Retryable:   IsTLSError,
	}
}

// Do calls fn until it succeeds, returns an error cfg.Retryable rejects, or
// cfg.MaxAttempts is reached. fn always runs at least once. A canceled ctx
// stops it between attempts.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	maxAttempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}

		if cfg.Retryable != nil && !cfg.Retryable(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", maxAttempts, lastErr)
}

// IsTLSError reports whether err is a certificate verification failure.
// Timeouts, refused connections and protocol mismatches are not.
func IsTLSError(err error) bool {
	if err == nil {
		return false
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}

	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}

	var invalidErr x509.CertificateInvalidError
	return errors.As(err, &invalidErr)
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
