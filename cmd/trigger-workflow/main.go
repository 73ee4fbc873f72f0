// Package main triggers the daily update workflow through the GitHub
// workflow dispatch API.
// Usage: GITHUB_TOKEN=... trigger-workflow
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"feed-audit/internal/infra/dispatch"
	"feed-audit/internal/observability/logging"
)

func main() {
	slog.SetDefault(logging.NewCLILogger())
	os.Exit(run(os.Stdout, os.Stderr))
}

// run dispatches the workflow configured in the environment and returns the
// exit code. Without a token it prints the setup steps and sends nothing.
func run(stdout, stderr io.Writer) int {
	cfg := dispatch.LoadConfigFromEnv()
	client, err := dispatch.NewClient(cfg)
	if errors.Is(err, dispatch.ErrMissingToken) {
		fmt.Fprintf(stderr, "Error: %v\n\n%s\n", err, dispatch.Setup)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid dispatch configuration: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Triggering %s on %s/%s (ref %s)...\n", cfg.Workflow, cfg.Owner, cfg.Repo, cfg.Ref)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.Trigger(ctx); err != nil {
		slog.Error("workflow dispatch failed", slog.Any("error", err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Workflow triggered successfully.")
	fmt.Fprintf(stdout, "Check progress at: %s\n", cfg.RunsURL())
	return 0
}
