package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewbaird/rulesetview/internal/activity"
	"github.com/matthewbaird/rulesetview/internal/catalog"
	"github.com/matthewbaird/rulesetview/internal/config"
	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/eventbus"
	"github.com/matthewbaird/rulesetview/internal/label"
	"github.com/matthewbaird/rulesetview/internal/metrics"
	"github.com/matthewbaird/rulesetview/internal/server"
	"github.com/matthewbaird/rulesetview/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.DefaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatalf("reading environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	slog.SetDefault(logger)

	fallback, err := label.ParsePriorityList(cfg.Rulesets.Language)
	if err != nil {
		log.Fatalf("rulesets.language: %v", err)
	}

	m := metrics.New()
	bus := eventbus.New(cfg.Events.Buffer, logger)
	bus.Subscribe("log", eventbus.NewLogConsumer(logger))
	bus.Subscribe("metrics", eventbus.NewMetricsConsumer(m))
	bus.Start(context.WithoutCancel(ctx))
	defer bus.Stop()

	store := activity.NewMemoryStore(0)
	recorder := event.NewActivityRecorder(store)
	recorder.SetPublisher(bus)

	cat := catalog.New(os.DirFS(cfg.Rulesets.Dir), cfg.Rulesets.Glob,
		catalog.WithLogger(logger),
		catalog.WithRecorder(recorder),
		catalog.WithMetrics(m),
	)
	if err := cat.Refresh(ctx); err != nil {
		// Rulesets that failed are logged and skipped; the others are served.
		logger.Error("loading rulesets", "error", err)
	}
	logger.Info("rulesets loaded", "dir", cfg.Rulesets.Dir, "count", len(cat.Names()))

	if cfg.Rulesets.Watch {
		go func() {
			if err := cat.Watch(ctx, cfg.Rulesets.Dir, cfg.Rulesets.Debounce); err != nil {
				logger.Error("watching rulesets", "error", err)
			}
		}()
	}

	sessions := session.NewManager(cfg.Sessions.MaxAge, cfg.Sessions.IdleTimeout)
	go sessions.Run(ctx, time.Minute, func(s *session.Session) {
		logger.Info("session expired", "session", s.ID, "ruleset", s.Ruleset)
	})

	if err := server.Run(ctx, server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Catalog:         cat,
		Store:           store,
		Recorder:        recorder,
		Sessions:        sessions,
		Metrics:         m,
		Logger:          logger,
		Fallback:        fallback,
	}); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
