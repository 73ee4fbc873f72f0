// Package main runs feed discovery over a person registry and reports the
// feed found for every blog that has no explicit feed.
// Usage: findfeeds [--registry FILE] [--output text|json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"feed-audit/internal/config"
	"feed-audit/internal/domain/entity"
	"feed-audit/internal/infra/registry"
	"feed-audit/internal/infra/scraper"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/usecase/audit"
)

// Finding is the discovery result for one blog.
type Finding struct {
	Name   string `json:"name"`
	Blog   string `json:"blog"`
	Feed   string `json:"feed,omitempty"`
	Method string `json:"method,omitempty"` // "link", "anchor" or "probe"
	Error  string `json:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := logging.NewCLILogger()
	slog.SetDefault(logger)

	cfg, err := config.LoadAuditConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var outputFormat string
	fs := flag.NewFlagSet("findfeeds", flag.ContinueOnError)
	fs.StringVar(&cfg.RegistryFile, "registry", cfg.RegistryFile, "Path to the Markdown person registry")
	fs.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	fs.BoolVar(&cfg.StrictTLS, "strict-tls", cfg.StrictTLS, "Never retry without certificate verification")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q (want text or json)\n", outputFormat)
		return 2
	}

	doc, err := registry.LoadFile(cfg.RegistryFile, registry.StylePerson)
	if err != nil {
		logger.Error("failed to load registry", slog.String("path", cfg.RegistryFile), slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := scraper.NewFactory(cfg.Factory()).Resolver()
	findings := findFeeds(ctx, logger, resolver, doc.Records)

	if outputFormat == "json" {
		err = writeJSON(os.Stdout, findings)
	} else {
		err = writeText(os.Stdout, findings)
	}
	if err != nil {
		logger.Error("failed to write output", slog.Any("error", err))
		return 1
	}
	return 0
}

// findFeeds resolves the first blog of every record without a feed.
func findFeeds(ctx context.Context, logger *slog.Logger, resolver audit.FeedResolver, records []entity.EntityRecord) []Finding {
	var pending []entity.EntityRecord
	for _, rec := range records {
		if rec.URLs.Has(entity.RoleBlog) && !rec.URLs.Has(entity.RoleFeed) {
			pending = append(pending, rec)
		}
	}

	findings := make([]Finding, 0, len(pending))
	for i, rec := range pending {
		if ctx.Err() != nil {
			break
		}
		blog := rec.URLs.First(entity.RoleBlog)
		logger.Info("finding feed",
			slog.String("progress", fmt.Sprintf("%d/%d", i+1, len(pending))),
			slog.String("name", rec.Name),
			slog.String("blog", blog))

		f := Finding{Name: rec.Name, Blog: blog}
		res, err := resolver.Resolve(ctx, blog)
		switch {
		case err == nil:
			f.Feed, f.Method = res.FeedURL, res.Method
		case errors.Is(err, audit.ErrNoFeedDiscovered):
			f.Error = "no feed discovered"
		default:
			f.Error = err.Error()
		}
		findings = append(findings, f)
	}
	return findings
}

func writeText(w io.Writer, findings []Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(w, "No blogs without a feed.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tBLOG\tFEED")
	for _, f := range findings {
		feed := f.Feed
		if feed == "" {
			feed = "-  (" + f.Error + ")"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, f.Blog, feed)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, findings []Finding) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(findings)
}
