// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handler "github.com/mfaber/hindsight/internal/api/handler/api"
	"github.com/mfaber/hindsight/internal/api/job"
	"github.com/mfaber/hindsight/internal/api/middleware"
	"github.com/mfaber/hindsight/internal/metrics"
	"github.com/mfaber/hindsight/internal/storage/archive"
)

// Config holds server configuration.
type Config struct {
	Host      string
	Port      int
	APIKey    string
	RateLimit float64
	RateBurst int
}

// Server is the HTTP front of the backtest pipeline.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer wires routes, middleware and handlers.
func NewServer(cfg Config, jobs *job.Store, store archive.Storage, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	backtests := handler.NewBacktestHandler(jobs, store, reg, logger)
	searches := handler.NewSearchHandler(jobs, store, reg, logger)

	mux.HandleFunc("POST /api/v1/backtests", backtests.Create)
	mux.HandleFunc("GET /api/v1/backtests/{id}", func(w http.ResponseWriter, r *http.Request) {
		backtests.GetStatus(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /api/v1/searches", searches.Create)
	mux.HandleFunc("GET /api/v1/searches/{id}", func(w http.ResponseWriter, r *http.Request) {
		searches.GetStatus(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET /api/v1/health", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Outermost first: logging sees every request, auth guards everything
	// except the open endpoints, the rate limiter sits in front of the
	// handlers.
	var h http.Handler = mux
	h = middleware.RateLimit(cfg.RateLimit, cfg.RateBurst)(h)
	h = middleware.APIKeyAuth(cfg.APIKey, "/api/v1/health", "/metrics")(h)
	h = metrics.HTTPMiddleware(reg)(h)
	h = metrics.LoggingMiddleware(logger)(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the middleware-wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
