package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-backfill/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProgressReporter exposes the counts of the backfill run in progress.
type ProgressReporter interface {
	Progress() pipeline.Summary
}

// Server exposes health, readiness, progress, and metrics endpoints while a
// backfill runs.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type statusResponse struct {
	Products        int     `json:"products"`
	Updated         int     `json:"updated"`
	Skipped         int     `json:"skipped"`
	Errors          int     `json:"errors"`
	Interrupted     bool    `json:"interrupted"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /status, and
// /metrics routes. The backfill serves as both checker and reporter.
func NewServer(addr string, ready sharedobs.ReadinessChecker, progress ProgressReporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.HandleFunc("GET /status", handleStatus(progress))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("status server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleStatus(reporter ProgressReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		p := reporter.Progress()
		writeJSON(w, http.StatusOK, statusResponse{
			Products:        p.Products,
			Updated:         p.Updated,
			Skipped:         p.Skipped,
			Errors:          p.Errors,
			Interrupted:     p.Interrupted,
			DurationSeconds: p.Duration.Seconds(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort status response
}
