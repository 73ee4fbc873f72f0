package scraper

import (
	"context"
	"errors"
	"time"

	"feed-audit/internal/resilience/circuitbreaker"
)

// FactoryConfig holds the settings shared by the audit collaborators.
type FactoryConfig struct {
	UserAgent    string
	StrictTLS    bool
	HostBreakers bool
	FetchTimeout time.Duration
	PageTimeout  time.Duration
	ProbeTimeout time.Duration
}

// Factory builds the feed fetcher and feed resolver over one shared
// HTTPClient, so both count against the same per-host breakers.
type Factory struct {
	client *HTTPClient
	cfg    FactoryConfig
}

// NewFactory creates the shared client from cfg.
func NewFactory(cfg FactoryConfig) *Factory {
	clientCfg := ClientConfig{
		UserAgent: cfg.UserAgent,
		StrictTLS: cfg.StrictTLS,
	}
	if cfg.HostBreakers {
		bcfg := circuitbreaker.FeedHostConfig()
		// A cancelled run says nothing about the host.
		bcfg.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
		clientCfg.Breakers = circuitbreaker.NewHostBreakers(bcfg)
	}
	return &Factory{client: NewHTTPClient(clientCfg), cfg: cfg}
}

// Client returns the shared HTTP client.
func (f *Factory) Client() *HTTPClient {
	return f.client
}

// Fetcher returns an RSSFetcher on the shared client.
func (f *Factory) Fetcher() *RSSFetcher {
	return NewRSSFetcher(f.client, f.cfg.FetchTimeout)
}

// Resolver returns a Discoverer on the shared client.
func (f *Factory) Resolver() *Discoverer {
	return NewDiscoverer(f.client, f.cfg.PageTimeout, f.cfg.ProbeTimeout)
}
