package audit

import (
	"strings"
	"time"

	"feed-audit/internal/domain/entity"
)

// InWindow reports whether a timestamp falls within window of now.
// A nil timestamp always passes: unknown recency is left for the reader
// to judge.
func InWindow(ts *time.Time, now time.Time, window time.Duration) bool {
	if ts == nil || ts.IsZero() {
		return true
	}
	return !ts.Before(now.Add(-window))
}

// Timestamp prefers the published time and falls back to the updated time.
func (it FeedItem) Timestamp() *time.Time {
	if it.Published != nil && !it.Published.IsZero() {
		return it.Published
	}
	if it.Updated != nil && !it.Updated.IsZero() {
		return it.Updated
	}
	return nil
}

// filterRecent inspects at most maxEntries items in feed order and returns
// the recent ones as entries attributed to src. Later items are ignored
// even when newer, since feeds are not guaranteed to be sorted.
func filterRecent(items []FeedItem, src source, now time.Time, window time.Duration, maxEntries int) []entity.FeedEntry {
	if maxEntries > 0 && len(items) > maxEntries {
		items = items[:maxEntries]
	}

	var entries []entity.FeedEntry
	for _, it := range items {
		ts := it.Timestamp()
		if !InWindow(ts, now, window) {
			continue
		}
		entries = append(entries, toEntry(it, ts, src))
	}
	return entries
}

func toEntry(it FeedItem, ts *time.Time, src source) entity.FeedEntry {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = entity.UntitledEntry
	}
	summary := it.Description
	if strings.TrimSpace(summary) == "" {
		summary = it.Content
	}

	var published *time.Time
	if ts != nil {
		t := *ts
		published = &t
	}

	return entity.FeedEntry{
		Title:       title,
		Link:        strings.TrimSpace(it.Link),
		PublishedAt: published,
		Summary:     entity.TruncateSummary(summary, entity.MaxSummaryLength),
		SourceURL:   src.url,
		SourceKind:  src.role,
	}
}
