package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed-audit/internal/infra/scraper"
	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/resilience/circuitbreaker"
	"feed-audit/internal/usecase/audit"
)

func TestHTTPClient_Get_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := scraper.NewHTTPClient(scraper.ClientConfig{})
	resp, err := client.Get(context.Background(), server.URL, time.Second)
	require.NoError(t, err)

	assert.Equal(t, scraper.DefaultUserAgent, gotUA)
	assert.Equal(t, "ok", string(resp.Body))
	assert.False(t, resp.Insecure)
}

func TestHTTPClient_Get_StatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := scraper.NewHTTPClient(scraper.ClientConfig{})
	resp, err := client.Get(context.Background(), server.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())
}

func TestHTTPClient_Head_ReadsNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte("<rss/>"))
	}))
	defer server.Close()

	client := scraper.NewHTTPClient(scraper.ClientConfig{})
	resp, err := client.Head(context.Background(), server.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "application/rss+xml", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Body)
}

func TestHTTPClient_TLSRelaxation(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("self-signed"))
	}))
	defer server.Close()

	t.Run("retries once without verification", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.TLSFallbackTotal)

		client := scraper.NewHTTPClient(scraper.ClientConfig{})
		resp, err := client.Get(context.Background(), server.URL, 2*time.Second)
		require.NoError(t, err)

		assert.True(t, resp.Insecure)
		assert.Equal(t, "self-signed", string(resp.Body))
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.TLSFallbackTotal))
	})

	t.Run("strict TLS reports the verification failure", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.TLSFallbackTotal)

		client := scraper.NewHTTPClient(scraper.ClientConfig{StrictTLS: true})
		_, err := client.Get(context.Background(), server.URL, 2*time.Second)
		require.Error(t, err)

		assert.True(t, errors.Is(err, audit.ErrSourceUnreachable))
		assert.Contains(t, err.Error(), "TLS verification failed")
		assert.Equal(t, before, testutil.ToFloat64(metrics.TLSFallbackTotal))
	})
}

func TestHTTPClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := scraper.NewHTTPClient(scraper.ClientConfig{})
	_, err := client.Get(context.Background(), server.URL, 50*time.Millisecond)
	require.Error(t, err)

	assert.True(t, errors.Is(err, audit.ErrSourceUnreachable))
	assert.True(t, errors.Is(err, audit.ErrTimeout))
	assert.Contains(t, err.Error(), "timeout after 50ms")
}

func TestHTTPClient_HostBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	deadURL := server.URL
	server.Close()

	client := scraper.NewHTTPClient(scraper.ClientConfig{
		Breakers: circuitbreaker.NewHostBreakers(circuitbreaker.FeedHostConfig()),
	})

	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), deadURL, time.Second)
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "circuit open")
	}

	before := testutil.ToFloat64(metrics.BreakerRejectionsTotal)
	_, err := client.Get(context.Background(), deadURL+"/feed", time.Second)
	require.Error(t, err)

	assert.True(t, errors.Is(err, audit.ErrSourceUnreachable))
	assert.Contains(t, err.Error(), "circuit open for host 127.0.0.1")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BreakerRejectionsTotal))
	assert.Equal(t, []string{"127.0.0.1"}, client.OpenHosts())
}

func TestHTTPClient_OpenHostsWithoutBreakers(t *testing.T) {
	client := scraper.NewHTTPClient(scraper.ClientConfig{})
	assert.Nil(t, client.OpenHosts())
}
