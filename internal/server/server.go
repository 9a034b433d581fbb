// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matthewbaird/rulesetview/internal/activity"
	"github.com/matthewbaird/rulesetview/internal/catalog"
	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/handler"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metrics"
	"github.com/matthewbaird/rulesetview/internal/session"
	"github.com/matthewbaird/rulesetview/internal/wire"
)

// Config holds server configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration

	Catalog  *catalog.Catalog
	Store    activity.Store
	Recorder event.Recorder
	Sessions *session.Manager
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// Fallback labels requests that name no language.
	Fallback label.PriorityList
}

// NewRouter registers all routes.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = event.Discard
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger, cfg.Metrics))
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","rulesets":%d}`, len(cfg.Catalog.Names()))
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	rh := handler.NewRulesetHandler(cfg.Catalog, rec, cfg.Fallback)
	ws := wire.NewHandler(cfg.Catalog, cfg.Sessions, rec, cfg.Fallback, logger)

	r.Route("/v1/rulesets", func(r chi.Router) {
		r.Get("/", rh.ListRulesets)
		r.Route("/{ruleset}", func(r chi.Router) {
			r.Get("/stages", rh.GetStages)
			r.Get("/divisions", rh.ListDivisions)
			r.Get("/divisions/{division}", rh.GetDivision)
			r.Post("/divisions/{division}/visible", rh.VisibleMetadata)
			r.Post("/divisions/{division}/addable", rh.AddableMetadata)
			r.Post("/divisions/{division}/reimport", rh.Reimport)
			r.Get("/functional/{use}", rh.GetFunctional)
			r.Get("/keys/{key}", rh.GetKey)
			r.Post("/keys/{key}/validate", rh.ValidateValue)
			r.Get("/ws", ws.ServeHTTP)
		})
	})

	if cfg.Store != nil {
		r.Get("/v1/activity", handler.NewActivityHandler(cfg.Store).ListActivity)
	}
	return r
}

// Run starts the HTTP server with all routes registered and shuts it down
// gracefully once ctx is done.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "rulesets", len(cfg.Catalog.Names()))
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	logger.Info("shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
