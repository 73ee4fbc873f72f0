package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-audit/internal/infra/scraper"
	"feed-audit/internal/usecase/audit"
	"feed-audit/tests/fixtures"
)

func serveString(contentType, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
}

func TestRSSFetcher_Fetch_RSS(t *testing.T) {
	published := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	server := serveString("application/rss+xml", fixtures.RSS("Alice", []fixtures.Item{
		{Title: "First", Link: "https://alice.dev/1", Description: "short", Published: published},
		{Title: "Second", Link: "https://alice.dev/2", Content: "<p>full</p>", Updated: updated},
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(scraper.NewHTTPClient(scraper.ClientConfig{}), 0)
	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "First", items[0].Title)
	assert.Equal(t, "https://alice.dev/1", items[0].Link)
	assert.Equal(t, "short", items[0].Description)
	require.NotNil(t, items[0].Published)
	assert.True(t, published.Equal(*items[0].Published))

	assert.Equal(t, "<p>full</p>", items[1].Content)
	require.NotNil(t, items[1].Updated)
	assert.True(t, updated.Equal(*items[1].Updated))
}

func TestRSSFetcher_Fetch_Atom(t *testing.T) {
	published := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	server := serveString("application/atom+xml", fixtures.Atom("Bob", []fixtures.Item{
		{Title: "Atom entry", Link: "https://bob.dev/a", Description: "summary", Published: published},
	}))
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(scraper.NewHTTPClient(scraper.ClientConfig{}), time.Second)
	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "Atom entry", items[0].Title)
	assert.Equal(t, "https://bob.dev/a", items[0].Link)
	assert.Equal(t, "summary", items[0].Description)
	require.NotNil(t, items[0].Published)
	assert.True(t, published.Equal(*items[0].Published))
}

func TestRSSFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
		wantMsg string
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			},
			wantErr: audit.ErrSourceUnreachable,
			wantMsg: "HTTP 404",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr: audit.ErrSourceUnreachable,
			wantMsg: "HTTP 500",
		},
		{
			name: "html instead of feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte(fixtures.BlogPage("Not a feed", "")))
			},
			wantErr: audit.ErrFeedUnparseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			fetcher := scraper.NewRSSFetcher(scraper.NewHTTPClient(scraper.ClientConfig{}), time.Second)
			items, err := fetcher.Fetch(context.Background(), server.URL)

			require.Error(t, err)
			assert.Nil(t, items)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRSSFetcher_Fetch_LinkFallsBackToLinks(t *testing.T) {
	body := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>t</title>
  <entry>
    <title>Only self link</title>
    <link rel="self" href="https://example.com/self"/>
  </entry>
</feed>`
	server := serveString("application/atom+xml", body)
	defer server.Close()

	fetcher := scraper.NewRSSFetcher(scraper.NewHTTPClient(scraper.ClientConfig{}), time.Second)
	items, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/self", items[0].Link)
}
