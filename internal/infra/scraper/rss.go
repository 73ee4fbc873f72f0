package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/usecase/audit"

	"github.com/mmcdole/gofeed"
)

// DefaultFetchTimeout bounds a single feed request.
const DefaultFetchTimeout = 10 * time.Second

// RSSFetcher implements audit.FeedFetcher using the gofeed library.
// RSS 1.0/2.0 and Atom are detected from the body.
type RSSFetcher struct {
	client  *HTTPClient
	timeout time.Duration
}

// NewRSSFetcher creates an RSSFetcher on top of client. A zero timeout
// means DefaultFetchTimeout.
func NewRSSFetcher(client *HTTPClient, timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &RSSFetcher{client: client, timeout: timeout}
}

// Fetch retrieves and parses the feed at feedURL.
//
// Errors wrap audit.ErrSourceUnreachable for transport failures and non-2xx
// responses, and audit.ErrFeedUnparseable when the body is not a feed.
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string) ([]audit.FeedItem, error) {
	start := time.Now()

	resp, err := f.client.Get(ctx, feedURL, f.timeout)
	if err != nil {
		metrics.RecordFeedFetch(time.Since(start), false)
		return nil, err
	}
	if !resp.OK() {
		metrics.RecordFeedFetch(time.Since(start), false)
		return nil, statusError(resp)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		metrics.RecordFeedFetch(time.Since(start), false)
		return nil, fmt.Errorf("%w: %v", audit.ErrFeedUnparseable, err)
	}
	metrics.RecordFeedFetch(time.Since(start), true)

	slog.Debug("feed parsed",
		slog.String("url", feedURL),
		slog.String("feed_type", feed.FeedType),
		slog.Int("items", len(feed.Items)),
		slog.Bool("insecure", resp.Insecure))

	items := make([]audit.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, toFeedItem(it))
	}
	return items, nil
}

func toFeedItem(it *gofeed.Item) audit.FeedItem {
	link := it.Link
	if link == "" && len(it.Links) > 0 {
		link = it.Links[0]
	}
	return audit.FeedItem{
		Title:       it.Title,
		Link:        link,
		Description: it.Description,
		Content:     it.Content,
		Published:   it.PublishedParsed,
		Updated:     it.UpdatedParsed,
	}
}
