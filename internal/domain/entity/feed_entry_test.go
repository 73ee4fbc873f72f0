package entity

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTruncateSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"trims whitespace", "  hello \n", 10, "hello"},
		{"exact length", "abcde", 5, "abcde"},
		{"cut", "abcdef", 5, "abcde"},
		{"multi-byte counted as runes", "日本語のテキスト", 3, "日本語"},
		{"zero max", "abc", 0, ""},
		{"empty", "", 500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateSummary(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncateSummary_DefaultLimit(t *testing.T) {
	got := TruncateSummary(strings.Repeat("é", 600), MaxSummaryLength)
	assert.Equal(t, MaxSummaryLength, utf8.RuneCountInString(got))
}

func TestFeedEntry_HasTimestamp(t *testing.T) {
	now := time.Now()
	var zero time.Time

	assert.True(t, FeedEntry{PublishedAt: &now}.HasTimestamp())
	assert.False(t, FeedEntry{}.HasTimestamp())
	assert.False(t, FeedEntry{PublishedAt: &zero}.HasTimestamp())
}

func TestDedupeByLink(t *testing.T) {
	entries := []FeedEntry{
		{Title: "first", Link: "https://a.dev/1"},
		{Title: "second", Link: "https://a.dev/2"},
		{Title: "first again", Link: "https://a.dev/1"},
		{Title: "third", Link: "https://a.dev/3"},
		{Title: "second again", Link: "https://a.dev/2"},
	}

	got := DedupeByLink(entries)

	want := []FeedEntry{
		{Title: "first", Link: "https://a.dev/1"},
		{Title: "second", Link: "https://a.dev/2"},
		{Title: "third", Link: "https://a.dev/3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DedupeByLink() mismatch (-want +got):\n%s", diff)
	}

	t.Run("idempotent", func(t *testing.T) {
		if diff := cmp.Diff(got, DedupeByLink(got)); diff != "" {
			t.Errorf("dedupe(dedupe(x)) != dedupe(x):\n%s", diff)
		}
	})

	t.Run("length non-increasing", func(t *testing.T) {
		assert.LessOrEqual(t, len(got), len(entries))
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Nil(t, DedupeByLink(nil))
	})

	t.Run("input untouched", func(t *testing.T) {
		assert.Len(t, entries, 5)
		assert.Equal(t, "first again", entries[2].Title)
	})
}
