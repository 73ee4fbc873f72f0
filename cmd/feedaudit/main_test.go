package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-audit/tests/fixtures"
)

func writeRegistry(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRun_JSONReport(t *testing.T) {
	now := time.Now()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprint(w, fixtures.RSS("Erin", fixtures.ItemsAged(now, server.URL, 24*time.Hour, 30*24*time.Hour)))
	}))
	defer server.Close()

	path := writeRegistry(t, "# People\n\n## Erin Writes\n- **RSS Feed:** "+server.URL+"/feed.xml\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--registry", path, "--format", "json", "--days", "7"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var got []struct {
		Name  string `json:"name"`
		Posts []struct {
			Title string `json:"title"`
		} `json:"posts"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Erin Writes", got[0].Name)
	assert.Empty(t, got[0].Errors)
	require.Len(t, got[0].Posts, 1)
	assert.Equal(t, "Post 1", got[0].Posts[0].Title)
}

func TestRun_UsageErrors(t *testing.T) {
	path := writeRegistry(t, "## Erin\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"--registry", path, "--format", "pdf"}, "unknown format"},
		{"unknown style", []string{"--registry", path, "--style", "team"}, "Error:"},
		{"unknown flag", []string{"--nope"}, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr.String(), tt.want)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_MissingRegistry(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--registry", filepath.Join(t.TempDir(), "missing.md")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
}
