package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for summary enrichment.
//
// Security settings:
//   - DenyPrivateIPs: blocks article links that resolve to private addresses
//   - MaxBodySize: caps the bytes read from an article page
//   - MaxRedirects: caps the redirect chain
//   - Timeout: bounds each article request
type Config struct {
	// Enabled turns enrichment on. Each enriched entry costs one extra
	// request. Default: false
	Enabled bool

	// Threshold is the summary length, in runes, under which the article
	// page is fetched. Default: 80
	Threshold int

	// Timeout is the maximum duration for a single article request.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects followed; each target
	// is validated again. Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects links resolving to loopback, private or
	// link-local addresses. Default: true
	DenyPrivateIPs bool

	// UserAgent identifies the fetcher. Default: "feed-audit/1.0"
	UserAgent string
}

// DefaultConfig returns the default enrichment configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		Threshold:      80,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "feed-audit/1.0",
	}
}

// Validate checks that the configuration values are usable.
//
// Validation rules:
//   - Threshold: >= 0 (0 never enriches)
//   - Timeout: > 0
//   - MaxBodySize: 1KB-100MB
//   - MaxRedirects: 0-10
func (c *Config) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables on top
// of DefaultConfig and validates the result.
//
// Environment variables:
//   - AUDIT_ENRICH_SUMMARIES: "true" or "false" (default: false)
//   - AUDIT_ENRICH_THRESHOLD: integer (default: 80)
//   - AUDIT_ENRICH_TIMEOUT: duration string, e.g. "10s" (default: 10s)
//   - AUDIT_ENRICH_MAX_BODY_SIZE: integer in bytes (default: 10485760)
//   - AUDIT_ENRICH_MAX_REDIRECTS: integer (default: 5)
//   - AUDIT_ENRICH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("AUDIT_ENRICH_SUMMARIES"); val != "" {
		cfg.Enabled = val == "true"
	}

	if val := os.Getenv("AUDIT_ENRICH_THRESHOLD"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid AUDIT_ENRICH_THRESHOLD: %v", err)
		}
		cfg.Threshold = parsed
	}

	if val := os.Getenv("AUDIT_ENRICH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid AUDIT_ENRICH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("AUDIT_ENRICH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid AUDIT_ENRICH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("AUDIT_ENRICH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid AUDIT_ENRICH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("AUDIT_ENRICH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
