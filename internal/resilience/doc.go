// Package resilience groups the fault tolerance helpers used by the feed
// auditor.
//
// The package supports:
//   - Per-host circuit breakers so a dead host is skipped after repeated
//     transport failures
//   - Immediate retry with a pluggable error classifier, used for the single
//     TLS-relaxation attempt against hosts with broken certificates
//
// Usage Example:
//
//	breakers := circuitbreaker.NewHostBreakers(circuitbreaker.FeedHostConfig())
//	_, err := breakers.Execute(feedURL, func() (interface{}, error) {
//	    return nil, fetch(feedURL)
//	})
//
//	err = retry.Do(ctx, retry.TLSFallbackConfig(), func() error {
//	    return fetchOnce()
//	})
package resilience
