// Package scraper fetches feeds and web pages for the audit use case.
// It parses RSS/Atom with gofeed, discovers feeds in HTML pages with
// goquery, and routes every request through a shared HTTP client that
// relaxes TLS verification once on certificate errors and short-circuits
// failing hosts.
package scraper

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/observability/tracing"
	"feed-audit/internal/resilience/circuitbreaker"
	"feed-audit/internal/resilience/retry"
	"feed-audit/internal/usecase/audit"
)

// DefaultUserAgent is a browser-like identifier; several blog hosts refuse
// requests from unknown bots.
const DefaultUserAgent = "Mozilla/5.0 (compatible; feed-audit/1.0; +https://github.com/feed-audit)"

const (
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
	defaultMaxRedirect = 10
)

// ClientConfig configures an HTTPClient.
type ClientConfig struct {
	// UserAgent is sent with every request. Empty means DefaultUserAgent.
	UserAgent string

	// StrictTLS disables the retry without certificate verification.
	StrictTLS bool

	// MaxBodySize caps the bytes read from a response body. Zero means 10MB.
	MaxBodySize int64

	// Breakers short-circuits hosts after repeated transport failures.
	// Nil disables host breakers.
	Breakers *circuitbreaker.HostBreakers

	// Transport overrides the base transport; tests point it at httptest
	// servers. Its TLS settings are cloned for the relaxed client.
	Transport *http.Transport
}

// Response is a fully read HTTP response.
type Response struct {
	URL        string // final URL after redirects
	StatusCode int
	Header     http.Header
	Body       []byte
	Insecure   bool // served over a connection without certificate verification
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPClient issues GET and HEAD requests with a per-call timeout.
// HTTP status codes are not errors at this level; callers inspect
// Response.StatusCode. HTTPClient is safe for concurrent use.
type HTTPClient struct {
	secure    *http.Client
	insecure  *http.Client
	userAgent string
	strictTLS bool
	maxBody   int64
	breakers  *circuitbreaker.HostBreakers
}

// NewHTTPClient builds the verified and relaxed clients from cfg.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
		base.MaxIdleConnsPerHost = 4
		base.IdleConnTimeout = 90 * time.Second
	}

	relaxed := base.Clone()
	if relaxed.TLSClientConfig == nil {
		relaxed.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	relaxed.TLSClientConfig.InsecureSkipVerify = true // #nosec G402 -- opt-out via StrictTLS

	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= defaultMaxRedirect {
			return fmt.Errorf("stopped after %d redirects", len(via))
		}
		return nil
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}

	return &HTTPClient{
		secure:    &http.Client{Transport: base, CheckRedirect: checkRedirect},
		insecure:  &http.Client{Transport: relaxed, CheckRedirect: checkRedirect},
		userAgent: ua,
		strictTLS: cfg.StrictTLS,
		maxBody:   maxBody,
		breakers:  cfg.Breakers,
	}
}

// Get fetches rawURL and reads the body.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, timeout)
}

// Head issues a HEAD request for rawURL.
func (c *HTTPClient) Head(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	return c.do(ctx, http.MethodHead, rawURL, timeout)
}

// OpenHosts lists hosts currently short-circuited by their breaker. It is
// nil when host breakers are disabled.
func (c *HTTPClient) OpenHosts() []string {
	if c.breakers == nil {
		return nil
	}
	return c.breakers.OpenHosts()
}

// do runs one logical request: through the host breaker, then the verified
// client, then once more through the relaxed client if the first attempt
// failed certificate verification. Returned errors wrap
// audit.ErrSourceUnreachable.
func (c *HTTPClient) do(ctx context.Context, method, rawURL string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var resp *Response
	call := func() (interface{}, error) {
		r, err := c.withTLSFallback(ctx, method, rawURL)
		if err != nil {
			return nil, err
		}
		resp = r
		return r, nil
	}

	var err error
	if c.breakers != nil {
		_, err = c.breakers.Execute(rawURL, call)
	} else {
		_, err = call()
	}
	if err != nil {
		return nil, c.classify(ctx, rawURL, timeout, err)
	}
	return resp, nil
}

func (c *HTTPClient) withTLSFallback(ctx context.Context, method, rawURL string) (*Response, error) {
	cfg := retry.TLSFallbackConfig()
	if c.strictTLS {
		cfg.MaxAttempts = 1
	}

	var (
		resp    *Response
		attempt int
	)
	err := retry.Do(ctx, cfg, func() error {
		attempt++
		client, insecure := c.secure, false
		if attempt > 1 {
			client, insecure = c.insecure, true
			metrics.RecordTLSFallback()
			slog.Warn("certificate verification failed, retrying without verification",
				slog.String("url", rawURL))
		}

		r, err := c.roundTrip(ctx, client, method, rawURL)
		if err != nil {
			return err
		}
		r.Insecure = insecure
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, client *http.Client, method, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, text/html;q=0.8, */*;q=0.5")
	tracing.InjectHeaders(ctx, req.Header)

	httpResp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	var body []byte
	if method != http.MethodHead {
		body, err = io.ReadAll(io.LimitReader(httpResp.Body, c.maxBody))
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
	}

	finalURL := rawURL
	if httpResp.Request != nil && httpResp.Request.URL != nil {
		finalURL = httpResp.Request.URL.String()
	}

	return &Response{
		URL:        finalURL,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

// classify turns a transport error into an audit error with a readable
// message.
func (c *HTTPClient) classify(ctx context.Context, rawURL string, timeout time.Duration, err error) error {
	if circuitbreaker.IsRejection(err) {
		metrics.RecordBreakerRejection()
		return fmt.Errorf("%w: circuit open for host %s", audit.ErrSourceUnreachable, circuitbreaker.HostOf(rawURL))
	}

	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w after %v", audit.ErrSourceUnreachable, audit.ErrTimeout, timeout)
	}

	if retry.IsTLSError(err) {
		return fmt.Errorf("%w: TLS verification failed: %v", audit.ErrSourceUnreachable, unwrapURLError(err))
	}
	return fmt.Errorf("%w: %v", audit.ErrSourceUnreachable, unwrapURLError(err))
}

// unwrapURLError drops the "Get \"url\":" prefix of *url.Error; the source
// URL is already part of every reported error.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err
	}
	return err
}

// statusError reports a non-2xx response as unreachable.
func statusError(resp *Response) error {
	return fmt.Errorf("%w: %w", audit.ErrSourceUnreachable, &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	})
}
