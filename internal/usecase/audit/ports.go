package audit

import (
	"context"
	"time"
)

// FeedItem is one raw entry as parsed from a feed, before recency filtering.
type FeedItem struct {
	Title       string
	Link        string
	Description string
	Content     string
	Published   *time.Time
	Updated     *time.Time
}

// FeedFetcher retrieves and parses the feed at url. Items are returned in
// feed order.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// Resolution is the outcome of feed discovery for a page.
type Resolution struct {
	FeedURL string
	Method  string // "link", "anchor" or "probe"
}

// FeedResolver discovers the feed advertised by, or conventionally located
// next to, a web page. It returns ErrNoFeedDiscovered when nothing is found.
type FeedResolver interface {
	Resolve(ctx context.Context, pageURL string) (Resolution, error)
}

// SummaryEnricher fetches the article at link and returns a plain-text
// summary of at most maxRunes runes. Failures leave the feed summary as is.
type SummaryEnricher interface {
	Enrich(ctx context.Context, link string, maxRunes int) (string, error)
}
