package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"feed-audit/internal/config"
	"feed-audit/internal/infra/fetcher"
	"feed-audit/internal/infra/scraper"
	workerPkg "feed-audit/internal/infra/worker"
	"feed-audit/internal/observability/logging"
	"feed-audit/internal/usecase/audit"
)

func main() {
	logger := initLogger()

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort),
		slog.String("output_dir", workerConfig.OutputDir))

	auditConfig := loadAuditConfig(logger)
	factory := scraper.NewFactory(auditConfig.Factory())
	svc, err := setupAuditService(logger, factory, auditConfig)
	if err != nil {
		logger.Error("failed to set up audit service", slog.Any("error", err))
		os.Exit(1)
	}

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, workerConfig.MetricsPort, factory.Client().OpenHosts)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	job := &auditJob{
		logger:   logger,
		svc:      svc,
		registry: auditConfig.RegistryFile,
		window:   auditConfig.WindowDays,
		cfg:      workerConfig,
		metrics:  workerMetrics,
		health:   healthServer,
	}
	startCronWorker(ctx, logger, job, workerConfig, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadAuditConfig loads the audit configuration, falling back to the
// defaults when the environment is invalid.
func loadAuditConfig(logger *slog.Logger) *config.AuditConfig {
	cfg, err := config.LoadAuditConfig()
	if err != nil {
		logger.Warn("invalid audit configuration, using defaults", slog.Any("error", err))
		def := config.DefaultAuditConfig()
		return &def
	}
	return cfg
}

// setupAuditService creates the audit service. The factory is shared with
// the metrics server so /health/hosts sees the same breakers.
func setupAuditService(logger *slog.Logger, factory *scraper.Factory, cfg *config.AuditConfig) (*audit.Service, error) {
	overrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		return nil, err
	}

	svc := audit.NewService(factory.Fetcher(), factory.Resolver(), cfg.Service())
	svc.Overrides = overrides

	if cfg.Enrich.Enabled {
		svc.Enricher = fetcher.NewReadabilityFetcher(cfg.Enrich)
		logger.Info("Summary enrichment enabled",
			slog.Int("threshold", cfg.Enrich.Threshold),
			slog.Duration("timeout", cfg.Enrich.Timeout))
	} else {
		logger.Info("Summary enrichment disabled")
	}

	logger.Info("Audit service initialized",
		slog.String("registry", cfg.RegistryFile),
		slog.Int("overrides", len(overrides)),
		slog.Int("window_days", cfg.WindowDays),
		slog.Int("concurrency", cfg.Concurrency),
		slog.Bool("host_breakers", cfg.HostBreakers))
	return svc, nil
}

// startCronWorker starts the cron scheduler and blocks until ctx is done.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *auditJob, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(cfg.Location()))

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		job.Run(ctx)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	if cfg.RunOnStart {
		go job.Run(ctx)
	}

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutdown signal received, waiting for running audit")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
