package main

import (
	"log/slog"
	"os"

	"github.com/MikeSquared-Agency/triage/internal/config"
	"github.com/MikeSquared-Agency/triage/internal/proxy"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	p, err := proxy.New(cfg.ProxyPort, cfg.UpstreamURL, slog.Default())
	if err != nil {
		slog.Error("failed to build proxy", "error", err)
		os.Exit(1)
	}

	slog.Info("triage-proxy ready", "port", cfg.ProxyPort, "upstream", cfg.UpstreamURL)
	if err := p.Start(); err != nil {
		slog.Error("proxy server error", "error", err)
		os.Exit(1)
	}
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
