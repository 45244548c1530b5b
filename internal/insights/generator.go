// Package insights periodically summarizes aggregated metrics into
// natural-language recommendations via an external language model. The
// generation cycle never sits on the request path, and its read API never
// becomes unavailable just because the backend is down.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/triage/internal/analytics"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

const maxReportTokens = 800

// Backend is the external natural-language generation service.
// *anthropic.Client satisfies it.
type Backend interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int, temperature float64) (string, error)
}

// Snapshotter is the aggregator surface the generator reads.
type Snapshotter interface {
	Snapshot() []analytics.MetricBucket
}

// InteractionSource feeds recent rows into the prompt context. Optional.
type InteractionSource interface {
	RecentInteractions(ctx context.Context, limit int) ([]store.Interaction, error)
}

// Generator owns the single latest-report slot. Many readers call Latest
// concurrently; one recurring task replaces the slot atomically, so readers
// see either the old report or the fully-formed new one, never a partial.
type Generator struct {
	agg      Snapshotter
	backend  Backend
	source   InteractionSource // may be nil
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.RWMutex
	latest *InsightReport
}

func NewGenerator(agg Snapshotter, backend Backend, source InteractionSource, interval, timeout time.Duration, logger *slog.Logger) *Generator {
	return &Generator{
		agg:      agg,
		backend:  backend,
		source:   source,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

// Run generates on a fixed interval until ctx is cancelled. A first report
// is produced immediately so the read API has something to serve.
func (g *Generator) Run(ctx context.Context) {
	g.GenerateNow(ctx)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.GenerateNow(ctx)
		}
	}
}

// Latest returns the current report. Never nil once Run or GenerateNow has
// been called; nil only before the first cycle.
func (g *Generator) Latest() *InsightReport {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.latest
}

// GenerateNow runs one generation cycle: snapshot, prompt, backend call
// under its own timeout. On backend failure the previous report is retained
// and flagged degraded — insights are best-effort by contract.
func (g *Generator) GenerateNow(ctx context.Context) *InsightReport {
	buckets := g.agg.Snapshot()
	overview := analytics.Summarize(buckets)

	var recent []store.Interaction
	if g.source != nil {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		rows, err := g.source.RecentInteractions(callCtx, maxRecentInPrompt)
		cancel()
		if err != nil {
			g.logger.Warn("failed to load recent interactions for prompt", "error", err)
		} else {
			recent = rows
		}
	}

	report, err := g.generate(ctx, overview, recent)
	if err != nil {
		g.logger.Warn("insight generation failed, serving degraded report", "error", err)
		report = g.degraded(overview)
	}

	g.mu.Lock()
	g.latest = report
	g.mu.Unlock()

	g.logger.Info("insight report updated",
		"report_id", report.ID,
		"data_points", report.DataPoints,
		"severity", report.Severity,
		"degraded", report.Degraded,
	)
	return report
}

func (g *Generator) generate(ctx context.Context, overview analytics.Overview, recent []store.Interaction) (*InsightReport, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.backend.Complete(callCtx, systemPrompt, buildPrompt(overview, recent), maxReportTokens, 0.7)
	if err != nil {
		return nil, fmt.Errorf("backend call: %w", err)
	}

	parsed, err := parseReportJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend response: %w", err)
	}

	return &InsightReport{
		ID:                 uuid.New(),
		GeneratedAt:        g.now().UTC(),
		Title:              parsed.Title,
		SummaryText:        parsed.Overview,
		KeyFindings:        parsed.KeyFindings,
		Alerts:             parsed.Alerts,
		Recommendations:    parsed.Recommendations,
		Trends:             parsed.Trends,
		Severity:           severityFor(overview),
		BasedOnBucketCount: overview.BucketCount,
		DataPoints:         overview.TotalPredictions,
	}, nil
}

// degraded returns the previous report flagged stale, or a deterministic
// fallback when no report exists yet.
func (g *Generator) degraded(overview analytics.Overview) *InsightReport {
	g.mu.RLock()
	prev := g.latest
	g.mu.RUnlock()

	if prev != nil {
		return degradedCopy(prev)
	}
	return g.fallback(overview)
}

// fallback builds a report from the measured data alone, the same shape the
// backend would produce. Flagged degraded so consumers know the narrative
// layer was unavailable.
func (g *Generator) fallback(o analytics.Overview) *InsightReport {
	highRate, lowRate := rates(o)

	report := &InsightReport{
		ID:                 uuid.New(),
		GeneratedAt:        g.now().UTC(),
		Title:              "Customer Service Analytics Summary",
		Severity:           severityFor(o),
		BasedOnBucketCount: o.BucketCount,
		DataPoints:         o.TotalPredictions,
		Degraded:           true,
	}

	if o.TotalPredictions == 0 {
		report.SummaryText = "No customer interactions recorded yet. Start processing customer requests to generate insights."
		report.KeyFindings = []string{"No data to analyze"}
		report.Alerts = []string{}
		report.Recommendations = []string{"Begin collecting customer interaction data"}
		report.Trends = "Insufficient data for trend analysis"
		return report
	}

	report.SummaryText = fmt.Sprintf(
		"Analyzed %d customer interactions with %.1f%% high priority and %.1f%% low predicted satisfaction.",
		o.TotalPredictions, highRate, lowRate,
	)
	report.KeyFindings = []string{
		fmt.Sprintf("Total predictions processed: %d", o.TotalPredictions),
		fmt.Sprintf("High priority cases: %d (%.1f%%)", o.HighPriority, highRate),
		fmt.Sprintf("Average model confidence: %.3f", o.AvgConfidence),
	}

	report.Alerts = []string{}
	if highRate > 30 {
		report.Alerts = append(report.Alerts, fmt.Sprintf("High priority spike: %.1f%% of cases need urgent attention", highRate))
	}
	if lowRate > 40 {
		report.Alerts = append(report.Alerts, fmt.Sprintf("Satisfaction concern: %.1f%% of cases predicted low satisfaction", lowRate))
	}
	if len(report.Alerts) == 0 {
		report.Alerts = append(report.Alerts, "System operating within normal parameters")
	}

	if highRate > 20 {
		report.Recommendations = []string{"Review high priority case resolution processes", "Continue monitoring satisfaction trends"}
	} else {
		report.Recommendations = []string{"Maintain current service levels", "Continue monitoring satisfaction trends"}
	}

	if len(report.Alerts) == 1 && report.Alerts[0] == "System operating within normal parameters" {
		report.Trends = "Stable operational metrics observed"
	} else {
		report.Trends = "Attention needed in highlighted areas"
	}

	return report
}

type llmReport struct {
	Title           string   `json:"title"`
	Overview        string   `json:"overview"`
	KeyFindings     []string `json:"key_findings"`
	Alerts          []string `json:"alerts"`
	Recommendations []string `json:"recommendations"`
	Trends          string   `json:"trends"`
}

// parseReportJSON extracts the JSON object from the model output, tolerating
// stray prose around it.
func parseReportJSON(raw string) (llmReport, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return llmReport{}, fmt.Errorf("no JSON object in response")
	}

	var parsed llmReport
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return llmReport{}, fmt.Errorf("unmarshal report: %w", err)
	}
	if parsed.Title == "" {
		parsed.Title = "Customer Service Analytics Summary"
	}
	return parsed, nil
}
