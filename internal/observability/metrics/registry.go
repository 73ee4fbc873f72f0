// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Audit metrics track feed resolution, fetching and filtering
var (
	// SourcesAuditedTotal counts audited candidate sources by role and outcome
	SourcesAuditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_audit_sources_total",
			Help: "Total number of candidate sources audited",
		},
		[]string{"role", "outcome"}, // outcome: ok, unreachable, unparseable, no_feed, invalid_url, skipped
	)

	// EntriesEmittedTotal counts entries that passed the recency filter
	EntriesEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_audit_entries_total",
			Help: "Total number of recent entries emitted",
		},
		[]string{"role"},
	)

	// EntitiesAuditedTotal counts audited entities by status
	EntitiesAuditedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_audit_entities_total",
			Help: "Total number of entities audited",
		},
		[]string{"status"}, // status: active, inactive, no_sources
	)

	// FeedFetchDuration measures time to fetch and parse one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_audit_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"result"}, // result: success, failure
	)

	// DiscoveryTotal counts feed discovery attempts by the method that resolved them
	DiscoveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_audit_discovery_total",
			Help: "Total number of feed discovery attempts",
		},
		[]string{"method"}, // method: link, anchor, probe, none, error
	)

	// TLSFallbackTotal counts requests retried with certificate verification disabled
	TLSFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_audit_tls_fallback_total",
			Help: "Total number of requests retried without certificate verification",
		},
	)

	// BreakerRejectionsTotal counts requests short-circuited by an open host breaker
	BreakerRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_audit_breaker_rejections_total",
			Help: "Total number of requests rejected by an open per-host circuit breaker",
		},
	)

	// AuditRunDuration measures the wall time of a full audit run
	AuditRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_audit_run_duration_seconds",
			Help:    "Time taken to audit every entity of a registry",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// AuditCoverageRatio is the share of checked sources that resolved to a feed in the last run
	AuditCoverageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_audit_coverage_ratio",
			Help: "Share of checked sources that resolved to a readable feed in the last run (0-1)",
		},
	)
)

// Enrichment metrics track optional article fetching for short summaries
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in characters
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_size_bytes",
			Help:    "Fetched article content size in characters",
			Buckets: prometheus.ExponentialBuckets(100, 2, 14),
		},
	)
)
