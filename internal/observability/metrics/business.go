package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordSourceAudited records the outcome of auditing one candidate source.
// Outcome is "ok" or one of the source error kinds.
func RecordSourceAudited(role, outcome string, entries int) {
	SourcesAuditedTotal.WithLabelValues(role, outcome).Inc()
	if entries > 0 {
		EntriesEmittedTotal.WithLabelValues(role).Add(float64(entries))
	}
}

// RecordEntityAudited records the status of one audited entity.
// Status should be "active", "inactive" or "no_sources".
func RecordEntityAudited(status string) {
	EntitiesAuditedTotal.WithLabelValues(status).Inc()
}

// RecordFeedFetch records the duration and result of one feed fetch.
//
// Example:
//
//	start := time.Now()
//	items, err := fetcher.Fetch(ctx, feedURL)
//	metrics.RecordFeedFetch(time.Since(start), err == nil)
func RecordFeedFetch(duration time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	FeedFetchDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordDiscovery records how a blog URL was resolved to a feed.
// Method should be "link", "anchor", "probe", "none" or "error".
func RecordDiscovery(method string) {
	DiscoveryTotal.WithLabelValues(method).Inc()
}

// RecordTLSFallback records a request retried without certificate verification.
func RecordTLSFallback() {
	TLSFallbackTotal.Inc()
}

// RecordBreakerRejection records a request rejected by an open host breaker.
func RecordBreakerRejection() {
	BreakerRejectionsTotal.Inc()
}

// RecordAuditRun records the duration of a full run and its source coverage.
// Coverage is left unchanged when no source was checked.
func RecordAuditRun(duration time.Duration, sourcesChecked, sourcesWithFeed int) {
	AuditRunDuration.Observe(duration.Seconds())
	if sourcesChecked > 0 {
		AuditCoverageRatio.Set(float64(sourcesWithFeed) / float64(sourcesChecked))
	}
}

// RecordContentFetchSuccess records a successful content fetch operation.
// This tracks both the duration and size of fetched content.
//
// Parameters:
//   - duration: Time taken to fetch the content
//   - size: Size of fetched content in characters
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped content fetch operation.
// This occurs when the feed summary is already long enough.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// WriteTextfile writes every metric of the default registry to path in the
// Prometheus text format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
