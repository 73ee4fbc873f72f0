// Package audit provides the feed audit use case: it plans the sources of a
// tracked entity, resolves each one to a feed, fetches and parses it, and
// keeps the entries published inside the recency window.
package audit

import "errors"

// Sentinel errors for audit operations. Infrastructure adapters wrap these
// so the service can classify a failed source with errors.Is.
var (
	// ErrSourceUnreachable indicates a transport failure, a non-2xx status,
	// or a request rejected by an open circuit breaker.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrTimeout indicates the request exceeded its per-call timeout.
	// It is always reported together with ErrSourceUnreachable.
	ErrTimeout = errors.New("timeout")

	// ErrFeedUnparseable indicates the response body is not a feed.
	ErrFeedUnparseable = errors.New("feed unparseable")

	// ErrNoFeedDiscovered indicates neither an advertised link nor a probe
	// produced a feed for a page.
	ErrNoFeedDiscovered = errors.New("no RSS feed found")
)
