package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/triage/internal/analytics"
	"github.com/MikeSquared-Agency/triage/internal/anthropic"
	"github.com/MikeSquared-Agency/triage/internal/api"
	"github.com/MikeSquared-Agency/triage/internal/config"
	"github.com/MikeSquared-Agency/triage/internal/events"
	"github.com/MikeSquared-Agency/triage/internal/inference"
	"github.com/MikeSquared-Agency/triage/internal/insights"
	"github.com/MikeSquared-Agency/triage/internal/model"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("triage starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Model registry
	registry := model.NewRegistry()
	loaded, errs := registry.LoadDir(cfg.ModelDir)
	for _, err := range errs {
		slog.Warn("skipped model artifact", "error", err)
	}
	if missing := registry.Missing(model.Required); len(missing) > 0 {
		slog.Warn("starting degraded — required capabilities missing", "missing", missing)
	}
	slog.Info("model registry ready", "dir", cfg.ModelDir, "loaded", loaded)

	// Inference pipeline
	orch := inference.New(registry, inference.Thresholds{
		SentimentConfidence: cfg.SentimentThreshold,
	}, slog.Default())

	// Analytics
	agg := analytics.New(cfg.BucketWidth, cfg.RetentionHorizon)

	// Database (optional — predictions are served without it, just no
	// interaction history for insights)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set — running without interaction log")
	}

	// Event mirror (optional)
	var mirror *events.Client
	if cfg.NatsURL != "" {
		var err error
		mirror, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer mirror.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set — running without event mirroring")
	}

	// Insights generator. Without an API key the backend fails every
	// call and the generator serves its deterministic fallback report.
	if cfg.AnthropicAPIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY not set — insights will be degraded")
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)

	var source insights.InteractionSource
	if db != nil {
		source = db
	}
	gen := insights.NewGenerator(agg, llm, source, cfg.InsightsInterval, cfg.InsightsTimeout, slog.Default())
	go gen.Run(ctx)

	// HTTP API
	srv := api.NewServer(cfg.Port, orch, registry, agg, gen, mirror, db, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("triage ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("triage stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
