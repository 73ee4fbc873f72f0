package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-audit/internal/domain/entity"
	"feed-audit/internal/usecase/audit"
)

type stubResolver struct {
	feeds map[string]audit.Resolution
	calls []string
}

func (s *stubResolver) Resolve(_ context.Context, pageURL string) (audit.Resolution, error) {
	s.calls = append(s.calls, pageURL)
	if res, ok := s.feeds[pageURL]; ok {
		return res, nil
	}
	if pageURL == "https://down.dev" {
		return audit.Resolution{}, fmt.Errorf("%w: connection refused", audit.ErrSourceUnreachable)
	}
	return audit.Resolution{}, audit.ErrNoFeedDiscovered
}

func record(name string, urls map[entity.Role]string) entity.EntityRecord {
	rec := entity.EntityRecord{Name: name, Kind: entity.KindPerson, URLs: entity.URLSet{}}
	for role, u := range urls {
		rec.URLs.Add(role, u)
	}
	return rec
}

func TestFindFeeds(t *testing.T) {
	resolver := &stubResolver{feeds: map[string]audit.Resolution{
		"https://alice.dev": {FeedURL: "https://alice.dev/feed.xml", Method: "link"},
	}}
	records := []entity.EntityRecord{
		record("Alice", map[entity.Role]string{entity.RoleBlog: "https://alice.dev"}),
		record("Bob", map[entity.Role]string{entity.RoleBlog: "https://bob.dev"}),
		record("Carol", map[entity.Role]string{
			entity.RoleBlog: "https://carol.dev",
			entity.RoleFeed: "https://carol.dev/rss",
		}),
		record("Dan", map[entity.Role]string{entity.RoleBlog: "https://down.dev"}),
		record("Eve", nil),
	}

	got := findFeeds(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), resolver, records)

	want := []Finding{
		{Name: "Alice", Blog: "https://alice.dev", Feed: "https://alice.dev/feed.xml", Method: "link"},
		{Name: "Bob", Blog: "https://bob.dev", Error: "no feed discovered"},
		{Name: "Dan", Blog: "https://down.dev", Error: "source unreachable: connection refused"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findFeeds() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"https://alice.dev", "https://bob.dev", "https://down.dev"}, resolver.calls,
		"records with an explicit feed are not resolved")
}

func TestFindFeeds_StopsOnCancel(t *testing.T) {
	resolver := &stubResolver{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := findFeeds(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), resolver, []entity.EntityRecord{
		record("Bob", map[entity.Role]string{entity.RoleBlog: "https://bob.dev"}),
	})

	assert.Empty(t, got)
	assert.Empty(t, resolver.calls)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, []Finding{
		{Name: "Alice", Blog: "https://alice.dev", Feed: "https://alice.dev/feed.xml"},
		{Name: "Bob", Blog: "https://bob.dev", Error: "no feed discovered"},
	}))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "https://alice.dev/feed.xml")
	assert.Contains(t, out, "(no feed discovered)")

	buf.Reset()
	require.NoError(t, writeText(&buf, nil))
	assert.Equal(t, "No blogs without a feed.\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []Finding{{Name: "Alice", Blog: "https://alice.dev", Feed: "https://alice.dev/feed.xml", Method: "probe"}}))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "probe", got[0]["method"])
	_, hasError := got[0]["error"]
	assert.False(t, hasError)
}
