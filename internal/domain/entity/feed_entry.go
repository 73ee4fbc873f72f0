package entity

import (
	"strings"
	"time"

	"feed-audit/internal/utils/text"
)

const (
	// UntitledEntry is the title given to entries whose feed item has none.
	UntitledEntry = "Untitled"

	// MaxSummaryLength is the maximum summary length in characters (runes).
	MaxSummaryLength = 500
)

// FeedEntry is one dated (or undated) item found in a source's feed.
// Link is the entry's identity for deduplication.
type FeedEntry struct {
	Title       string
	Link        string
	PublishedAt *time.Time
	Summary     string
	SourceURL   string
	SourceKind  Role
}

// HasTimestamp reports whether the entry carries a publish time.
func (e FeedEntry) HasTimestamp() bool {
	return e.PublishedAt != nil && !e.PublishedAt.IsZero()
}

// TruncateSummary trims whitespace and cuts s to at most max runes.
// Cutting counts runes, never bytes, so multi-byte text stays valid UTF-8.
func TruncateSummary(s string, max int) string {
	return text.Truncate(strings.TrimSpace(s), max)
}

// DedupeByLink drops entries whose Link was already seen, keeping the first
// occurrence and the original relative order. Applying it twice gives the
// same result as applying it once.
func DedupeByLink(entries []FeedEntry) []FeedEntry {
	if entries == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(entries))
	out := make([]FeedEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Link]; ok {
			continue
		}
		seen[e.Link] = struct{}{}
		out = append(out, e)
	}
	return out
}
