// Package server exposes the HTTP surface: sync triggers, report frames,
// exports and operational endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"oresync/internal/report"
	"oresync/internal/store"
	"oresync/internal/syncer"
	"oresync/pkg/telemetry"
)

// Syncer triggers ingestion runs.
type Syncer interface {
	Sync(ctx context.Context, dt report.DocType, force bool) (syncer.SyncResult, error)
	SyncAll(ctx context.Context, force bool) []syncer.SyncResult
}

// Store reads persisted report frames and sync audit rows.
type Store interface {
	Query(ctx context.Context, dt report.DocType, from, to time.Time, shift string) ([]report.Row, error)
	LastRuns(ctx context.Context) ([]store.RunRecord, error)
	Ping(ctx context.Context) error
}

// Config controls runtime behaviour for the HTTP layer.
type Config struct {
	AllowedOrigins []string
	ServiceName    string
}

// Server wires dependencies for the HTTP handlers.
type Server struct {
	store  Store
	syncer Syncer
	config Config
	log    zerolog.Logger
}

// New initialises the HTTP layer.
func New(st Store, sy Syncer, cfg Config, log zerolog.Logger) *Server {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "oresync"
	}
	return &Server{store: st, syncer: sy, config: cfg, log: log}
}

// Routes constructs the chi router containing all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(telemetry.Middleware(s.config.ServiceName))

	allowed := s.config.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Use(httprate.Limit(100, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sync", s.handleSyncAll)
		r.Post("/sync/{type}", s.handleSync)
		r.Get("/sync/status", s.handleSyncStatus)
		r.Get("/reports/{type}", s.handleReport)
		r.Get("/reports/{type}/export", s.handleExport)
	})

	return r
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
