package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/triage/internal/analytics"
	"github.com/MikeSquared-Agency/triage/internal/events"
	"github.com/MikeSquared-Agency/triage/internal/inference"
	"github.com/MikeSquared-Agency/triage/internal/insights"
	"github.com/MikeSquared-Agency/triage/internal/model"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

// Server is the HTTP boundary: prediction, health, and the analytics and
// insights read surface.
type Server struct {
	router       *chi.Mux
	port         int
	orchestrator *inference.Orchestrator
	registry     *model.Registry
	aggregator   *analytics.Aggregator
	generator    *insights.Generator
	mirror       *events.Client // optional
	db           *store.Store   // optional
	logger       *slog.Logger
}

func NewServer(
	port int,
	orchestrator *inference.Orchestrator,
	registry *model.Registry,
	aggregator *analytics.Aggregator,
	generator *insights.Generator,
	mirror *events.Client,
	db *store.Store,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:       router,
		port:         port,
		orchestrator: orchestrator,
		registry:     registry,
		aggregator:   aggregator,
		generator:    generator,
		mirror:       mirror,
		db:           db,
		logger:       logger,
	}

	router.Post("/predict", s.predict)
	router.Get("/health", s.health)
	router.Get("/api/metrics", s.metrics)
	router.Get("/api/insights", s.getInsights)
	router.Post("/api/insights/generate", s.generateInsights)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	missing := s.registry.Missing(model.Required)
	status := "ok"
	code := http.StatusOK
	if len(missing) > 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":               status,
		"missing_capabilities": missing,
	})
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	buckets := s.aggregator.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"overview": analytics.Summarize(buckets),
		"buckets":  buckets,
	})
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	report := s.generator.Latest()
	if report == nil {
		// First generation cycle has not completed yet.
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":  "pending",
			"message": "insight generation in progress, retry shortly",
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) generateInsights(w http.ResponseWriter, r *http.Request) {
	report := s.generator.GenerateNow(r.Context())
	writeJSON(w, http.StatusOK, report)
}

// record fans a served prediction out to the analytics sinks. It runs off
// the request goroutine; any sink fault is logged and dropped, never
// surfaced to the client.
func (s *Server) record(p inference.Prediction, latency time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("analytics sink panic, prediction dropped", "error", fmt.Sprint(r))
		}
	}()

	s.aggregator.Record(p, latency)
	s.mirror.PublishPrediction(p, latency)

	if s.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.WriteInteraction(ctx, p, latency); err != nil {
			s.logger.Warn("failed to log interaction", "prediction_id", p.ID, "error", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error_code": code,
		"message":    message,
	})
}
