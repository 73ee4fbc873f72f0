package scraper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeCandidates(t *testing.T) {
	page, err := url.Parse("https://alice.dev/blog/")
	require.NoError(t, err)

	got := probeCandidates(page)
	require.Len(t, got, 2*len(probePaths))
	assert.Equal(t, "https://alice.dev/blog/feed", got[0])
	assert.Equal(t, "https://alice.dev/blog/feed/atom", got[len(probePaths)-1])
	assert.Equal(t, "https://alice.dev/feed", got[len(probePaths)])

	root, err := url.Parse("https://alice.dev")
	require.NoError(t, err)
	assert.Len(t, probeCandidates(root), len(probePaths))
}

func TestHasFeedSignature(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"rss", `<rss version="2.0"><channel/></rss>`, true},
		{"atom", `<feed xmlns="http://www.w3.org/2005/Atom"/>`, true},
		{"xml prolog", `<?xml version="1.0"?><rdf:RDF/>`, true},
		{"html", `<!DOCTYPE html><html><head><title>feed</title></head></html>`, false},
		{"plain text", `nothing to see`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasFeedSignature([]byte(tt.body)))
		})
	}
}

func TestIsFeedContentType(t *testing.T) {
	assert.True(t, isFeedContentType("application/rss+xml; charset=utf-8"))
	assert.True(t, isFeedContentType("text/xml"))
	assert.False(t, isFeedContentType("application/xhtml+xml"))
	assert.False(t, isFeedContentType("text/html"))
	assert.False(t, isFeedContentType(""))
}
