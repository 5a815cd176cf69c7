// Package api exposes the HTTP interface for the collection service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
	"github.com/jaeha-dev/music-metrics-crawler/internal/metrics"
)

// Runner executes one collection pass. Implemented by collect.Engine.
type Runner interface {
	Run(ctx context.Context, targets []collect.Target) (collect.RunSummary, error)
}

// Config controls Server behavior.
type Config struct {
	// RunTimeout bounds a triggered collection run.
	RunTimeout time.Duration
}

// Server wires HTTP handlers to the collection engine. Runs triggered over
// HTTP execute in the background; at most one run is in flight at a time.
type Server struct {
	router  chi.Router
	runner  Runner
	targets []collect.Target
	cfg     Config
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	last    *collect.RunSummary
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, targets []collect.Target, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	s := &Server{
		runner:  runner,
		targets: targets,
		cfg:     cfg,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/runs", s.triggerRun)
		r.Get("/runs/latest", s.latestRun)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type runRequest struct {
	// Targets overrides the configured target list for this run.
	Targets []collect.Target `json:"targets"`
}

func (s *Server) triggerRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not configured")
		return
	}

	targets := s.targets
	if r.Body != nil && r.ContentLength != 0 {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if len(req.Targets) > 0 {
			targets = req.Targets
		}
	}
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "no targets configured")
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	s.running = true
	s.mu.Unlock()

	go s.executeRun(targets)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "accepted",
		"targets": len(targets),
	})
}

func (s *Server) executeRun(targets []collect.Target) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	summary, err := s.runner.Run(ctx, targets)

	s.mu.Lock()
	s.running = false
	if err == nil {
		s.last = &summary
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("triggered run failed", zap.Error(err))
	}
}

func (s *Server) latestRun(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	last := s.last
	running := s.running
	s.mu.Unlock()

	if last == nil {
		writeJSON(w, http.StatusOK, map[string]any{"running": running, "summary": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": running, "summary": last})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
