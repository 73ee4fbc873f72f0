package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HealthServer serves the worker probes:
//   - /health: liveness, always 200
//   - /health/ready: 200 once the scheduler is running, 503 before
//
// The readiness body also carries the outcome of the last audit run.
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady atomic.Bool

	mu      sync.RWMutex
	lastRun *RunStatus
}

// RunStatus summarises the most recent audit run.
type RunStatus struct {
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Entities  int       `json:"entities"`
	Active    int       `json:"active"`
	Error     string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string     `json:"status"`
	LastRun *RunStatus `json:"last_run,omitempty"`
}

// NewHealthServer creates a server listening on addr. It starts not ready.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	return &HealthServer{addr: addr, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	return mux
}

// Start serves until ctx is cancelled, then shuts down within 5 seconds and
// returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips the readiness probe.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// SetLastRun records the outcome of the latest audit run.
func (h *HealthServer) SetLastRun(status RunStatus) {
	h.mu.Lock()
	h.lastRun = &status
	h.mu.Unlock()
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	resp := healthResponse{LastRun: h.lastRun}
	h.mu.RUnlock()

	if !h.isReady.Load() {
		resp.Status = "not ready"
		h.write(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Status = "ok"
	h.write(w, http.StatusOK, resp)
}

func (h *HealthServer) write(w http.ResponseWriter, code int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
