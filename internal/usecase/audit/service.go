package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feed-audit/internal/domain/entity"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/observability/metrics"
	"feed-audit/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Config controls recency filtering and fan-out.
type Config struct {
	// WindowDays is the default recency window used when a call passes a
	// non-positive window.
	WindowDays int

	// MaxEntries is how many leading items of each feed are inspected.
	MaxEntries int

	// Concurrency bounds how many entities AuditAll audits at once.
	// Sources of one entity are always audited sequentially.
	Concurrency int

	// EnrichBelow is the summary length, in runes, under which the
	// SummaryEnricher is asked for a better summary.
	EnrichBelow int

	// Now returns the reference time for the recency window.
	Now func() time.Time
}

// DefaultConfig returns the defaults: a 7 day window over the first 15
// items of each feed, audited sequentially.
func DefaultConfig() Config {
	return Config{
		WindowDays:  7,
		MaxEntries:  15,
		Concurrency: 1,
		EnrichBelow: 80,
		Now:         time.Now,
	}
}

// Service audits tracked entities. Every failure is local to one source:
// it is recorded on the AuditResult and never aborts sibling sources or
// sibling entities.
type Service struct {
	Fetcher   FeedFetcher
	Resolver  FeedResolver
	Enricher  SummaryEnricher // optional
	Overrides OverrideTable   // optional
	Tracer    trace.Tracer    // nil means the global tracer

	cfg Config
}

// NewService creates a Service. Zero config values take the defaults.
func NewService(fetcher FeedFetcher, resolver FeedResolver, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.EnrichBelow < 0 {
		cfg.EnrichBelow = 0
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &Service{Fetcher: fetcher, Resolver: resolver, cfg: cfg}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return tracing.GetTracer()
}

// Audit audits one registry record with the configured window.
func (s *Service) Audit(ctx context.Context, rec entity.EntityRecord) entity.AuditResult {
	res := s.AuditSources(ctx, rec.Name, rec.URLs, s.cfg.WindowDays)
	res.Kind = rec.Kind
	res.Category = rec.Category
	return res
}

// AuditAll audits records with at most Config.Concurrency entities in
// flight. Results are returned in input order.
func (s *Service) AuditAll(ctx context.Context, records []entity.EntityRecord) []entity.AuditResult {
	start := time.Now()
	results := make([]entity.AuditResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range records {
		g.Go(func() error {
			results[i] = s.Audit(gctx, records[i])
			return nil
		})
	}
	_ = g.Wait() // audits never fail as a whole

	checked, withFeed := 0, 0
	for _, r := range results {
		for _, src := range r.Sources {
			checked++
			if src.FeedURL != "" && !src.Failed {
				withFeed++
			}
		}
	}
	metrics.RecordAuditRun(time.Since(start), checked, withFeed)

	logging.FromContext(ctx).Info("audit run completed",
		slog.Int("entities", len(records)),
		slog.Int("sources_checked", checked),
		slog.Int("sources_with_feed", withFeed),
		slog.Duration("duration", time.Since(start)))

	return results
}

// AuditSources audits the candidate URLs of one entity. A non-positive
// windowDays uses Config.WindowDays.
func (s *Service) AuditSources(ctx context.Context, name string, urls entity.URLSet, windowDays int) entity.AuditResult {
	if windowDays <= 0 {
		windowDays = s.cfg.WindowDays
	}
	window := time.Duration(windowDays) * 24 * time.Hour
	now := s.cfg.Now()

	ctx, span := s.tracer().Start(ctx, "audit.entity",
		trace.WithAttributes(
			attribute.String("entity.name", name),
			attribute.Int("audit.window_days", windowDays),
		))
	defer span.End()

	logger := logging.FromContext(ctx).With(slog.String("entity", name))
	res := entity.AuditResult{Name: name}

	sources := plan(s.Overrides.Lookup(name), urls)
	if len(sources) == 0 {
		metrics.RecordEntityAudited("no_sources")
		logger.Debug("no auditable sources")
		return res
	}
	explicit := explicitFeeds(sources)

	for _, src := range sources {
		if ctx.Err() != nil {
			// Run cancelled: remaining sources are reported, not skipped silently.
			res.Errors = append(res.Errors, entity.SourceError{
				SourceURL: src.url,
				Kind:      entity.ErrorUnreachable,
				Message:   fmt.Sprintf("audit cancelled: %v", ctx.Err()),
			})
			continue
		}
		s.auditSource(ctx, logger, src, explicit, now, window, &res)
	}

	span.SetAttributes(
		attribute.Int("audit.entries", len(res.Entries)),
		attribute.Int("audit.errors", len(res.Errors)),
	)

	status := "inactive"
	if res.Active() {
		status = "active"
	}
	metrics.RecordEntityAudited(status)

	logger.Info("entity audited",
		slog.String("status", status),
		slog.Int("sources", len(res.Sources)),
		slog.Int("entries", len(res.Entries)),
		slog.Int("errors", len(res.Errors)),
		slog.Int("notes", len(res.Notes)))

	return res
}

// auditSource resolves, fetches and filters one source, appending its
// entries, error or note to res.
func (s *Service) auditSource(ctx context.Context, logger *slog.Logger, src source, explicit []string,
	now time.Time, window time.Duration, res *entity.AuditResult) {

	ctx, span := s.tracer().Start(ctx, "audit.source",
		trace.WithAttributes(tracing.URLAttributes(src.url, string(src.role))...))
	defer span.End()

	fail := func(kind entity.ErrorKind, err error) {
		tracing.RecordError(span, err)
		metrics.RecordSourceAudited(string(src.role), string(kind), 0)
		res.Errors = append(res.Errors, entity.SourceError{SourceURL: src.url, Kind: kind, Message: err.Error()})
		logger.Warn("source failed",
			slog.String("url", src.url),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	}
	note := func(kind entity.ErrorKind, msg string) {
		metrics.RecordSourceAudited(string(src.role), string(kind), 0)
		res.Notes = append(res.Notes, entity.SourceError{SourceURL: src.url, Kind: kind, Message: msg})
		logger.Info("source noted", slog.String("url", src.url), slog.String("note", msg))
	}

	if err := entity.ValidateURL(src.url); err != nil {
		res.Sources = append(res.Sources, entity.SourceStatus{URL: src.url, Role: src.role, Failed: true})
		fail(entity.ErrorInvalidURL, err)
		return
	}

	feedURL := ""
	if src.role == entity.RoleFeed || entity.IsFeedEndpoint(src.url) {
		feedURL = src.url
	} else {
		for _, f := range explicit {
			if entity.SameHost(f, src.url) {
				note(entity.NoteSkipped, fmt.Sprintf("explicit feed %s covers this host", f))
				return
			}
		}

		resolution, err := s.Resolver.Resolve(ctx, src.url)
		switch {
		case errors.Is(err, ErrNoFeedDiscovered):
			res.Sources = append(res.Sources, entity.SourceStatus{URL: src.url, Role: src.role, Failed: len(explicit) == 0})
			if len(explicit) > 0 {
				note(entity.ErrorNoFeed, err.Error())
			} else {
				fail(entity.ErrorNoFeed, err)
			}
			return
		case err != nil:
			res.Sources = append(res.Sources, entity.SourceStatus{URL: src.url, Role: src.role, Failed: true})
			fail(classify(err), err)
			return
		}
		feedURL = resolution.FeedURL
		span.SetAttributes(
			attribute.String("feed.url", feedURL),
			attribute.String("feed.discovery", resolution.Method))
	}

	items, err := s.Fetcher.Fetch(ctx, feedURL)
	if err != nil {
		res.Sources = append(res.Sources, entity.SourceStatus{URL: src.url, Role: src.role, FeedURL: feedURL, Failed: true})
		if feedURL != src.url {
			err = fmt.Errorf("feed %s: %w", feedURL, err)
		}
		fail(classify(err), err)
		return
	}

	entries := filterRecent(items, src, now, window, s.cfg.MaxEntries)
	s.enrich(ctx, entries)

	res.Entries = append(res.Entries, entries...)
	res.Sources = append(res.Sources, entity.SourceStatus{URL: src.url, Role: src.role, FeedURL: feedURL, Entries: len(entries)})
	metrics.RecordSourceAudited(string(src.role), "ok", len(entries))
	span.SetAttributes(attribute.Int("feed.items", len(items)), attribute.Int("feed.recent", len(entries)))

	logger.Debug("source audited",
		slog.String("url", src.url),
		slog.String("feed", feedURL),
		slog.Int("items", len(items)),
		slog.Int("recent", len(entries)))
}

// enrich replaces short summaries with the enricher's output. Failures keep
// the feed summary.
func (s *Service) enrich(ctx context.Context, entries []entity.FeedEntry) {
	if s.Enricher == nil {
		return
	}
	for i := range entries {
		e := &entries[i]
		if e.Link == "" || len([]rune(e.Summary)) >= s.cfg.EnrichBelow {
			continue
		}
		summary, err := s.Enricher.Enrich(ctx, e.Link, entity.MaxSummaryLength)
		if err != nil || summary == "" {
			continue
		}
		e.Summary = entity.TruncateSummary(summary, entity.MaxSummaryLength)
	}
}

// classify maps an adapter error to the kind reported on the result.
func classify(err error) entity.ErrorKind {
	switch {
	case errors.Is(err, ErrFeedUnparseable):
		return entity.ErrorUnparseable
	case errors.Is(err, ErrNoFeedDiscovered):
		return entity.ErrorNoFeed
	default:
		return entity.ErrorUnreachable
	}
}
