package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"feed-audit/internal/domain/entity"
	"feed-audit/internal/infra/registry"
	workerPkg "feed-audit/internal/infra/worker"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/report"
)

// auditor is the part of audit.Service the job needs.
type auditor interface {
	AuditAll(ctx context.Context, records []entity.EntityRecord) []entity.AuditResult
}

// digestFormats are written on every run, in this order.
var digestFormats = []report.Format{report.FormatMarkdown, report.FormatJSON, report.FormatHTML}

// auditJob runs one registry audit and writes the dated digests. Runs never
// overlap; a tick that arrives while a run is in progress is skipped.
type auditJob struct {
	logger   *slog.Logger
	svc      auditor
	registry string
	window   int
	cfg      *workerPkg.WorkerConfig
	metrics  *workerPkg.WorkerMetrics
	health   *workerPkg.HealthServer
	now      func() time.Time

	running sync.Mutex
}

// Run executes a single audit with timeout and error handling.
func (j *auditJob) Run(parent context.Context) {
	if !j.running.TryLock() {
		j.logger.Warn("previous audit still running, skipping")
		return
	}
	defer j.running.Unlock()

	now := time.Now
	if j.now != nil {
		now = j.now
	}
	startTime := now()

	runID := logging.NewRunID()
	ctx := logging.ContextWithRunID(parent, runID)
	logger := logging.WithRunID(ctx, j.logger)
	ctx = logging.WithLogger(ctx, logger)

	j.metrics.RecordJobRun("started")
	logger.Info("audit started")

	ctx, cancel := context.WithTimeout(ctx, j.cfg.RunTimeout)
	defer cancel()

	status := workerPkg.RunStatus{StartedAt: startTime}
	entities, active, files, err := j.audit(ctx, startTime)
	duration := now().Sub(startTime)
	status.Duration = duration.Round(time.Millisecond).String()
	status.Entities, status.Active = entities, active

	j.metrics.RecordJobDuration(duration)
	if err != nil {
		logger.Error("audit failed", slog.Any("error", err))
		status.Error = err.Error()
		j.metrics.RecordJobRun("failure")
		j.health.SetLastRun(status)
		return
	}

	j.metrics.RecordJobRun("success")
	j.metrics.RecordEntities(entities, active)
	j.metrics.RecordLastSuccess()
	j.health.SetLastRun(status)

	logger.Info("audit completed",
		slog.Int("entities", entities),
		slog.Int("active", active),
		slog.Any("files", files),
		slog.Duration("duration", duration))
}

func (j *auditJob) audit(ctx context.Context, startTime time.Time) (entities, active int, files []string, err error) {
	doc, err := registry.LoadFile(j.registry, registry.StyleAuto)
	if err != nil {
		return 0, 0, nil, err
	}

	results := j.svc.AuditAll(ctx, doc.Records)
	if err := ctx.Err(); err != nil {
		return len(results), 0, nil, fmt.Errorf("audit interrupted: %w", err)
	}
	for _, r := range results {
		if r.Active() {
			active++
		}
	}

	opts := report.Options{
		Title:       doc.Metadata.Title,
		WindowDays:  j.window,
		GeneratedAt: startTime,
	}
	files, err = writeDigests(j.cfg.OutputDir, results, opts)
	return len(results), active, files, err
}

// writeDigests writes digest-YYYY-MM-DD.<ext> for every digest format and
// returns the written paths.
func writeDigests(dir string, results []entity.AuditResult, opts report.Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	base := "digest-" + opts.GeneratedAt.Format("2006-01-02")
	paths := make([]string, 0, len(digestFormats))
	for _, f := range digestFormats {
		var buf bytes.Buffer
		if err := report.Write(&buf, f, results, opts); err != nil {
			return paths, fmt.Errorf("render %s digest: %w", f, err)
		}
		path := filepath.Join(dir, base+"."+f.Ext())
		// #nosec G306 -- digests are published as-is
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
