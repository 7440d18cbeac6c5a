// Package server exposes the viewer's read-only HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/omnieval/internal/catalog"
	"github.com/ppiankov/omnieval/internal/dataset"
	"github.com/ppiankov/omnieval/internal/metrics"
	"github.com/ppiankov/omnieval/internal/model"
	"github.com/ppiankov/omnieval/internal/pipeline"
	"github.com/ppiankov/omnieval/internal/worker"
)

// Service is what the handlers need from the pipeline
type Service interface {
	Panel(ctx context.Context, req pipeline.PanelRequest) (*model.Panel, error)
	Report(ctx context.Context, key string, src model.Source) (*model.Report, error)
	RequirementDetails(ctx context.Context, key string, src model.Source, ids []string) (map[string]*model.RequirementDetail, error)
	Catalog() *catalog.Catalog
	Registry() *dataset.Registry
}

// Registry is a prometheus registry the server both registers on and exposes
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Server wires the handlers, middleware and metrics together
type Server struct {
	cfg     *model.Config
	service Service
	logger  *zap.Logger
	metrics *metrics.Metrics
	limiter *worker.Limiter
	gather  prometheus.Gatherer
}

// New creates a new Server
func New(cfg *model.Config, service Service, logger *zap.Logger, reg Registry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)
	m.SetArticlesLoaded(len(service.Registry().Keys()))

	return &Server{
		cfg:     cfg,
		service: service,
		logger:  logger,
		metrics: m,
		limiter: worker.NewLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.IdleTTL),
		gather:  reg,
	}
}

// Router builds the chi router with every route registered
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if s.cfg.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Use(s.rateLimit)
		api.Use(chimw.SetHeader("Content-Type", "application/json"))

		api.Get("/data", s.handleData)
		api.Get("/articles", s.handleArticles)
		api.Get("/articles/{key}/{source}/panel", s.handlePanel)
		api.Get("/articles/{key}/{source}/report", s.handleReport)
		api.Get("/requirements", s.handleRequirements)
		api.Get("/requirements/{id}", s.handleRequirement)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting omnieval", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
