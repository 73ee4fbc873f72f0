// Package config loads the audit configuration from the environment and the
// per-entity feed override table from YAML.
package config

import (
	"errors"
	"fmt"
	"time"

	"feed-audit/internal/infra/fetcher"
	"feed-audit/internal/infra/scraper"
	"feed-audit/internal/usecase/audit"
)

// AuditConfig holds everything a registry audit needs. CLI flags are applied
// on top of the loaded values before Validate is called.
type AuditConfig struct {
	// WindowDays is the recency window in days. Default: 7
	WindowDays int

	// MaxEntries is how many leading feed items are inspected. Default: 15
	MaxEntries int

	// Concurrency bounds how many entities are audited at once. Default: 1
	Concurrency int

	// FetchTimeout bounds each feed request. Default: 10s
	FetchTimeout time.Duration

	// PageTimeout bounds each discovery page request. Default: 10s
	PageTimeout time.Duration

	// ProbeTimeout bounds each well-known path probe. Default: 5s
	ProbeTimeout time.Duration

	// StrictTLS disables the relaxed-verification retry. Default: false
	StrictTLS bool

	// UserAgent is sent with every request.
	UserAgent string

	// HostBreakers enables one circuit breaker per source host, shared by
	// every entity of a run. Default: false
	HostBreakers bool

	// RegistryFile is the Markdown registry to audit. Default: "registry.md"
	RegistryFile string

	// OverridesFile is an optional YAML override table.
	OverridesFile string

	// Enrich configures summary enrichment from article pages.
	Enrich fetcher.Config
}

// DefaultAuditConfig returns the audit defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		WindowDays:   7,
		MaxEntries:   15,
		Concurrency:  1,
		FetchTimeout: scraper.DefaultFetchTimeout,
		PageTimeout:  scraper.DefaultPageTimeout,
		ProbeTimeout: scraper.DefaultProbeTimeout,
		StrictTLS:    false,
		UserAgent:    scraper.DefaultUserAgent,
		HostBreakers: false,
		RegistryFile: "registry.md",
		Enrich:       fetcher.DefaultConfig(),
	}
}

// LoadAuditConfig loads the audit configuration from environment variables.
// Unparseable values keep their defaults; out-of-range values are reported
// by Validate.
//
// Environment variables:
//   - AUDIT_WINDOW_DAYS (default: 7)
//   - AUDIT_MAX_ENTRIES (default: 15)
//   - AUDIT_CONCURRENCY (default: 1)
//   - AUDIT_FETCH_TIMEOUT (default: 10s)
//   - AUDIT_PAGE_TIMEOUT (default: 10s)
//   - AUDIT_PROBE_TIMEOUT (default: 5s)
//   - AUDIT_STRICT_TLS (default: false)
//   - AUDIT_USER_AGENT
//   - AUDIT_HOST_BREAKER_ENABLED (default: false)
//   - AUDIT_REGISTRY_FILE (default: "registry.md")
//   - AUDIT_OVERRIDES_FILE
//   - AUDIT_ENRICH_* (see fetcher.LoadConfigFromEnv)
func LoadAuditConfig() (*AuditConfig, error) {
	def := DefaultAuditConfig()

	enrich, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("invalid enrichment configuration: %w", err)
	}

	cfg := &AuditConfig{
		WindowDays:    getEnvInt("AUDIT_WINDOW_DAYS", def.WindowDays),
		MaxEntries:    getEnvInt("AUDIT_MAX_ENTRIES", def.MaxEntries),
		Concurrency:   getEnvInt("AUDIT_CONCURRENCY", def.Concurrency),
		FetchTimeout:  getEnvDuration("AUDIT_FETCH_TIMEOUT", def.FetchTimeout),
		PageTimeout:   getEnvDuration("AUDIT_PAGE_TIMEOUT", def.PageTimeout),
		ProbeTimeout:  getEnvDuration("AUDIT_PROBE_TIMEOUT", def.ProbeTimeout),
		StrictTLS:     getEnvBool("AUDIT_STRICT_TLS", def.StrictTLS),
		UserAgent:     getEnvOrDefault("AUDIT_USER_AGENT", def.UserAgent),
		HostBreakers:  getEnvBool("AUDIT_HOST_BREAKER_ENABLED", def.HostBreakers),
		RegistryFile:  getEnvOrDefault("AUDIT_REGISTRY_FILE", def.RegistryFile),
		OverridesFile: getEnvOrDefault("AUDIT_OVERRIDES_FILE", def.OverridesFile),
		Enrich:        enrich,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness and reports every problem found.
func (c *AuditConfig) Validate() error {
	var errs []error

	if c.WindowDays < 1 || c.WindowDays > 365 {
		errs = append(errs, fmt.Errorf("window days must be between 1 and 365, got %d", c.WindowDays))
	}
	if c.MaxEntries < 1 || c.MaxEntries > 500 {
		errs = append(errs, fmt.Errorf("max entries must be between 1 and 500, got %d", c.MaxEntries))
	}
	if c.Concurrency < 1 || c.Concurrency > 64 {
		errs = append(errs, fmt.Errorf("concurrency must be between 1 and 64, got %d", c.Concurrency))
	}
	for name, d := range map[string]time.Duration{
		"fetch timeout": c.FetchTimeout,
		"page timeout":  c.PageTimeout,
		"probe timeout": c.ProbeTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if err := c.Enrich.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("enrichment: %w", err))
	}

	return errors.Join(errs...)
}

// Factory returns the scraper settings.
func (c *AuditConfig) Factory() scraper.FactoryConfig {
	return scraper.FactoryConfig{
		UserAgent:    c.UserAgent,
		StrictTLS:    c.StrictTLS,
		HostBreakers: c.HostBreakers,
		FetchTimeout: c.FetchTimeout,
		PageTimeout:  c.PageTimeout,
		ProbeTimeout: c.ProbeTimeout,
	}
}

// Service returns the audit service settings.
func (c *AuditConfig) Service() audit.Config {
	cfg := audit.DefaultConfig()
	cfg.WindowDays = c.WindowDays
	cfg.MaxEntries = c.MaxEntries
	cfg.Concurrency = c.Concurrency
	cfg.EnrichBelow = c.Enrich.Threshold
	return cfg
}
