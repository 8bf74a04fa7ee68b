// Package server embeds an optional HTTP status endpoint into a
// comparison run.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/molcmp/internal/config"
	"github.com/haskel/molcmp/internal/scheduler"
	"github.com/haskel/molcmp/internal/server/middleware"
)

type Server struct {
	httpServer *http.Server
	sched      *scheduler.Scheduler
	metrics    *Metrics
	logger     *slog.Logger
	version    string
}

func New(cfg config.ServerConfig, sched *scheduler.Scheduler, metrics *Metrics, logger *slog.Logger, version string) *Server {
	s := &Server{
		sched:   sched,
		metrics: metrics,
		logger:  logger,
		version: version,
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", getOnly(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/status", getOnly(http.HandlerFunc(s.handleStatus)))
	mux.Handle("/metrics", getOnly(metrics.Handler()))

	handler := middleware.Chain(
		mux,
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.RateLimit(&middleware.RateLimitConfig{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}),
	)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("status server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("status server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.Stats())
}

// getOnly replicates the "GET /path" ServeMux patterns used before the
// module was built with a pre-1.22 toolchain that lacks method patterns.
func getOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
