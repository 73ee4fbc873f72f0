// Package main provides the registry audit command.
// Usage: feedaudit [--days N] [--format json|markdown|html] [--registry FILE]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feed-audit/internal/config"
	"feed-audit/internal/infra/fetcher"
	"feed-audit/internal/infra/registry"
	"feed-audit/internal/infra/scraper"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/report"
	"feed-audit/internal/usecase/audit"
)

func main() {
	slog.SetDefault(logging.NewCLILogger())
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the audit and returns the exit code: 0 on success, 1 on a
// runtime failure, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	logger := slog.Default()

	cfg, err := config.LoadAuditConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var (
		formatName  string
		styleName   string
		metricsFile string
	)
	fs := flag.NewFlagSet("feedaudit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.WindowDays, "days", cfg.WindowDays, "Recency window in days")
	fs.StringVar(&formatName, "format", "json", "Output format: json, markdown or html")
	fs.StringVar(&cfg.RegistryFile, "registry", cfg.RegistryFile, "Path to the Markdown registry")
	fs.StringVar(&styleName, "style", "auto", "Registry style: auto, person or company")
	fs.StringVar(&cfg.OverridesFile, "overrides", cfg.OverridesFile, "YAML file of per-entity feed overrides")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Entities audited at once")
	fs.BoolVar(&cfg.StrictTLS, "strict-tls", cfg.StrictTLS, "Never retry without certificate verification")
	fs.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	fs.BoolVar(&cfg.Enrich.Enabled, "enrich", cfg.Enrich.Enabled, "Fill short summaries from the article page")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	format, err := report.ParseFormat(formatName)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	style, err := registry.ParseStyle(styleName)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid configuration: %v\n", err)
		return 2
	}

	doc, err := registry.LoadFile(cfg.RegistryFile, style)
	if err != nil {
		logger.Error("failed to load registry", slog.String("path", cfg.RegistryFile), slog.Any("error", err))
		return 1
	}

	overrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		logger.Error("failed to load overrides", slog.Any("error", err))
		return 1
	}

	svc := newService(logger, cfg, overrides)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	runLogger := logging.WithRunID(ctx, logger)
	ctx = logging.WithLogger(ctx, runLogger)

	runLogger.Info("audit started",
		slog.String("registry", doc.Path),
		slog.String("style", doc.Style.String()),
		slog.Int("entities", len(doc.Records)),
		slog.Int("window_days", cfg.WindowDays))

	start := time.Now()
	results := svc.AuditAll(ctx, doc.Records)

	active := 0
	for _, r := range results {
		if r.Active() {
			active++
		}
	}
	runLogger.Info("audit completed",
		slog.Int("entities", len(results)),
		slog.Int("active", active),
		slog.Duration("duration", time.Since(start)))

	opts := report.Options{
		Title:       doc.Metadata.Title,
		WindowDays:  cfg.WindowDays,
		GeneratedAt: time.Now(),
	}
	if err := report.Write(stdout, format, results, opts); err != nil {
		runLogger.Error("failed to write report", slog.Any("error", err))
		return 1
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile); err != nil {
			runLogger.Error("failed to write metrics", slog.Any("error", err))
			return 1
		}
	}
	return 0
}

// newService wires the audit service from cfg.
func newService(logger *slog.Logger, cfg *config.AuditConfig, overrides audit.OverrideTable) *audit.Service {
	factory := scraper.NewFactory(cfg.Factory())
	svc := audit.NewService(factory.Fetcher(), factory.Resolver(), cfg.Service())
	svc.Overrides = overrides

	if cfg.Enrich.Enabled {
		svc.Enricher = fetcher.NewReadabilityFetcher(cfg.Enrich)
		logger.Info("summary enrichment enabled",
			slog.Int("threshold", cfg.Enrich.Threshold),
			slog.Duration("timeout", cfg.Enrich.Timeout))
	}
	return svc
}
