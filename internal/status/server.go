package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flemzord/recall/internal/index"
)

// Server serves the daemon's HTTP endpoints: /health, /status, /metrics.
type Server struct {
	repo      *index.Repository
	metrics   *Metrics
	logger    *slog.Logger
	startedAt time.Time
	http      *http.Server
}

// NewServer builds a server bound to addr.
func NewServer(addr string, repo *index.Repository, m *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		repo:      repo,
		metrics:   m,
		logger:    logger,
		startedAt: time.Now(),
	}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.buildRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// buildRouter constructs the chi mux with all routes wired.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth())
	r.Get("/status", s.handleStatus())
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return r
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("status: listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status: server error", "error", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string `json:"status"` // "ok" or "degraded"
	IndexPath string `json:"index_path"`
	Error     string `json:"error,omitempty"`
}

// handleHealth reports whether the index document is readable.
// Returns 200 when it loads, 503 when it is missing or malformed.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{Status: "ok", IndexPath: s.repo.Path()}

		if _, err := s.repo.Load(); err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	Metrics       MetricsSnapshot `json:"metrics"`
	Index         *index.Metadata `json:"index,omitempty"`
	Sessions      int             `json:"sessions"`
}

// handleStatus reports uptime, counters, and index totals.
func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			UptimeSeconds: int64(time.Since(s.startedAt) / time.Second),
			Metrics:       s.metrics.Snapshot(),
		}

		if doc, err := s.repo.Load(); err == nil {
			resp.Index = &doc.Metadata
			resp.Sessions = len(doc.Sessions)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
