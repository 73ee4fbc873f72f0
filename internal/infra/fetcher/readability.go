// Package fetcher fetches article pages and extracts readable text with
// go-readability. The audit use case calls it to replace feed summaries that
// are too short to be useful in a digest.
package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/resilience/circuitbreaker"
	"feed-audit/internal/utils/text"

	"github.com/go-shiori/go-readability"
)

// ReadabilityFetcher extracts article text using the Mozilla Readability
// algorithm. It implements audit.SummaryEnricher.
//
// Features:
//   - SSRF prevention via URL validation, redirects included
//   - Circuit breaker for fault tolerance
//   - Size limiting and per-request timeout
//
// Thread safety: ReadabilityFetcher is safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewReadabilityFetcher creates a ReadabilityFetcher from config.
func NewReadabilityFetcher(config Config) *ReadabilityFetcher {
	cb := circuitbreaker.New(circuitbreaker.Config{
		Name:             "content-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	})

	fetcher := &ReadabilityFetcher{
		circuitBreaker: cb,
		config:         config,
	}

	fetcher.client = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= fetcher.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), fetcher.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return fetcher
}

// Enrich fetches the article at link and returns its text with whitespace
// collapsed, cut to maxRunes runes.
func (f *ReadabilityFetcher) Enrich(ctx context.Context, link string, maxRunes int) (string, error) {
	start := time.Now()

	content, err := f.FetchContent(ctx, link)
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		slog.Debug("summary enrichment failed",
			slog.String("url", link),
			slog.Any("error", err))
		return "", err
	}

	summary := text.Truncate(text.CollapseSpace(content), maxRunes)
	if summary == "" {
		metrics.RecordContentFetchSkipped()
		return "", fmt.Errorf("%w: empty article text", ErrReadabilityFailed)
	}
	metrics.RecordContentFetchSuccess(time.Since(start), text.CountRunes(content))
	return summary, nil
}

// FetchContent fetches the page at urlStr and returns its readable text.
//
// Errors:
//   - ErrInvalidURL, ErrPrivateIP: the URL was rejected before any request
//   - ErrTooManyRedirects, ErrBodyTooLarge, ErrTimeout
//   - ErrReadabilityFailed: no article text was found
//   - gobreaker.ErrOpenState: too many recent failures
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// doFetch performs the request and the extraction. It runs inside the
// circuit breaker.
func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ErrBodyTooLarge, len(htmlBytes), f.config.MaxBodySize)
	}

	// The final URL may differ after redirects; readability resolves
	// relative links against it.
	pageURL, _ := url.Parse(urlStr)
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	if article.TextContent == "" {
		if article.Excerpt != "" {
			return article.Excerpt, nil
		}
		return "", fmt.Errorf("%w: no readable content found", ErrReadabilityFailed)
	}

	return article.TextContent, nil
}
