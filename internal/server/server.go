package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RepFinder answers representative lookups.
type RepFinder interface {
	Find(ctx context.Context, loc domain.Locator) ([]domain.Representative, error)
}

// Syncer runs the sync job for the given datasets, all when none are given.
type Syncer interface {
	Run(ctx context.Context, datasets ...domain.Dataset) domain.SyncReport
}

// StatusReader reports what the cache currently holds.
type StatusReader interface {
	Status(ctx context.Context) (domain.SyncStatus, error)
	Ping(ctx context.Context) error
}

// HistoryReader lists recent sync runs. Optional.
type HistoryReader interface {
	LatestRuns(ctx context.Context, limit int) ([]domain.SyncReport, error)
}

// LetterDrafter drafts advocacy letters.
type LetterDrafter interface {
	Draft(ctx context.Context, req domain.LetterRequest) (*domain.Letter, error)
}

type Deps struct {
	Reps       RepFinder
	Sync       Syncer
	Status     StatusReader
	History    HistoryReader
	Letters    LetterDrafter
	SyncSecret string
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
}

type Server struct {
	deps   Deps
	logger *zap.Logger
	router chi.Router
	http   *http.Server
}

func New(addr string, readTimeout, writeTimeout time.Duration, deps Deps, logger *zap.Logger) *Server {
	s := &Server{deps: deps, logger: logger}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverer(s.logger))
	r.Use(requestLogger(s.logger, s.deps.Metrics))

	r.Get("/healthz", s.handleHealth)
	r.Get("/reps", s.handleReps)
	r.Get("/sync-reps", s.handleSyncStatus)
	r.Post("/sync-reps", s.handleSync)
	r.Post("/generate", s.handleGenerate)

	if s.deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
