// Package dispatch triggers a GitHub Actions workflow through the
// workflow_dispatch REST endpoint.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"feed-audit/internal/observability/tracing"
	"feed-audit/internal/resilience/retry"
)

// ErrMissingToken is returned before any request when no token is configured.
var ErrMissingToken = errors.New("GITHUB_TOKEN not set")

// Setup is printed when the token is missing.
const Setup = `To trigger the workflow, you need a GitHub Personal Access Token.

Quick setup:
1. Go to: https://github.com/settings/tokens
2. Click 'Generate new token (classic)'
3. Give it a name: 'Trigger Workflows'
4. Select scopes: 'repo' and 'workflow'
5. Click 'Generate token'
6. Copy the token and run:
   export GITHUB_TOKEN='your-token-here'
   trigger-workflow
`

// Config identifies the workflow to dispatch.
type Config struct {
	// Token is a personal access token with the workflow scope.
	Token string
	// APIBase is the REST API root. Default: "https://api.github.com"
	APIBase string
	// Owner and Repo name the repository. Default: "feed-audit/feed-audit"
	Owner string
	Repo  string
	// Workflow is the workflow file name or ID. Default: "daily-update.yml"
	Workflow string
	// Ref is the branch the run uses. Default: "main"
	Ref string
	// Timeout bounds the request. Default: 30s
	Timeout time.Duration
}

// DefaultConfig returns the dispatch defaults without a token.
func DefaultConfig() Config {
	return Config{
		APIBase:  "https://api.github.com",
		Owner:    "feed-audit",
		Repo:     "feed-audit",
		Workflow: "daily-update.yml",
		Ref:      "main",
		Timeout:  30 * time.Second,
	}
}

// LoadConfigFromEnv reads:
//   - GITHUB_TOKEN
//   - GITHUB_API_URL (default: https://api.github.com)
//   - GITHUB_REPOSITORY as "owner/repo" (default: feed-audit/feed-audit)
//   - DISPATCH_WORKFLOW (default: daily-update.yml)
//   - DISPATCH_REF (default: main)
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		if owner, repo, ok := strings.Cut(v, "/"); ok && owner != "" && repo != "" {
			cfg.Owner, cfg.Repo = owner, repo
		}
	}
	if v := os.Getenv("DISPATCH_WORKFLOW"); v != "" {
		cfg.Workflow = v
	}
	if v := os.Getenv("DISPATCH_REF"); v != "" {
		cfg.Ref = v
	}
	return cfg
}

// Validate fails with ErrMissingToken when the token is empty.
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.Owner == "" || c.Repo == "" || c.Workflow == "" || c.Ref == "" {
		return fmt.Errorf("owner, repo, workflow and ref are required")
	}
	if _, err := url.Parse(c.APIBase); err != nil {
		return fmt.Errorf("invalid API base %q: %w", c.APIBase, err)
	}
	return nil
}

// Endpoint returns the dispatch URL.
func (c Config) Endpoint() string {
	return fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%s/dispatches",
		strings.TrimRight(c.APIBase, "/"),
		url.PathEscape(c.Owner), url.PathEscape(c.Repo), url.PathEscape(c.Workflow))
}

// RunsURL is the human-facing page listing runs of the workflow.
func (c Config) RunsURL() string {
	return fmt.Sprintf("https://github.com/%s/%s/actions/workflows/%s", c.Owner, c.Repo, c.Workflow)
}

// Client posts workflow_dispatch events.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type dispatchPayload struct {
	Ref string `json:"ref"`
}

// Trigger sends one dispatch event. GitHub answers 204 on success; any other
// status is returned as a *retry.HTTPError carrying the response body.
func (c *Client) Trigger(ctx context.Context) error {
	ctx, span := tracing.GetTracer().Start(ctx, "dispatch.trigger")
	defer span.End()

	body, err := json.Marshal(dispatchPayload{Ref: c.cfg.Ref})
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	tracing.InjectHeaders(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		slog.Default().Info("workflow dispatched",
			slog.String("repository", c.cfg.Owner+"/"+c.cfg.Repo),
			slog.String("workflow", c.cfg.Workflow),
			slog.String("ref", c.cfg.Ref))
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	herr := &retry.HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	tracing.RecordError(span, herr)
	return fmt.Errorf("error triggering workflow: %w", herr)
}
