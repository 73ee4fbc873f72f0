package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feed-audit/internal/observability/tracing"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// HostHealthResponse lists the source hosts whose circuit breaker is open.
type HostHealthResponse struct {
	Healthy   bool     `json:"healthy"`
	OpenHosts []string `json:"open_hosts"`
}

// startMetricsServer starts the Prometheus metrics HTTP server on port.
// It runs in a separate goroutine and shuts down within 5 seconds once ctx
// is canceled.
//
// The server exposes the following endpoints:
//   - GET /metrics - Prometheus metrics endpoint
//   - GET /health - Simple liveness probe (always returns 200 OK)
//   - GET /health/hosts - Hosts short-circuited by their breaker (503 if any)
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int, openHosts func() []string) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newMetricsHandler(openHosts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in background goroutine
	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

func newMetricsHandler(openHosts func() []string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/health/hosts", hostHealthHandler(openHosts))
	return tracing.Middleware(mux)
}

// healthHandler handles GET /health requests (liveness probe).
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// hostHealthHandler returns 503 Service Unavailable while any host breaker
// is open.
func hostHealthHandler(openHosts func() []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hosts := openHosts()
		if hosts == nil {
			hosts = []string{}
		}

		statusCode := http.StatusOK
		if len(hosts) > 0 {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(HostHealthResponse{
			Healthy:   len(hosts) == 0,
			OpenHosts: hosts,
		})
	}
}
