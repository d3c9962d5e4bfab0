package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nextstep/gift/internal/config"
	"github.com/nextstep/gift/internal/metrics"
)

// Server wraps the HTTP server and related dependencies.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	server  *http.Server
	router  chi.Router
	limiter *RateLimiter
}

// New constructs a server with base routes and middleware wiring. m may be
// nil, in which case requests are not instrumented and /metrics is absent.
func New(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Server {
	var rejected func()
	if m != nil {
		rejected = m.RateLimited
	}
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger, rejected)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// the rate limiter keys on RemoteAddr, so forwarded headers are only
	// honored when a trusted proxy sets them
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Instrument)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if m != nil && cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		server:  srv,
		router:  r,
		limiter: limiter,
	}
}

// Run starts the HTTP server and blocks until it exits or errors. Stale rate
// limiter entries are evicted until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.limiter.Sweep(ctx, time.Minute)

	s.logger.Info("api server listening", "addr", s.server.Addr, "env", s.cfg.Env)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server within the provided context timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Router exposes the root router for route registration by other packages.
func (s *Server) Router() chi.Router {
	return s.router
}

// RateLimit returns the per-client rate limiting middleware. It is mounted by
// the API routes only, so health checks and scrapes are never throttled.
func (s *Server) RateLimit() func(http.Handler) http.Handler {
	return s.limiter.Handler
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
