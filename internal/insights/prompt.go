package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/triage/internal/analytics"
	"github.com/MikeSquared-Agency/triage/internal/store"
)

const systemPrompt = `You are an expert customer service analyst. You turn support analytics into one concise business intelligence summary. Respond ONLY with valid JSON, no prose around it.`

const maxRecentInPrompt = 10

// buildPrompt formats the overview and recent interactions into a
// bounded-size prompt asking for a strict-JSON report.
func buildPrompt(o analytics.Overview, recent []store.Interaction) string {
	var b strings.Builder

	highRate, negRate := rates(o)

	fmt.Fprintf(&b, "OVERALL METRICS (last %d buckets):\n", o.BucketCount)
	fmt.Fprintf(&b, "- Total predictions: %d\n", o.TotalPredictions)
	fmt.Fprintf(&b, "- High priority: %d (%.1f%%)\n", o.HighPriority, highRate)
	fmt.Fprintf(&b, "- Low predicted satisfaction: %d (%.1f%%)\n", o.LowSatisfaction, negRate)
	fmt.Fprintf(&b, "- Average confidence: %.3f\n", o.AvgConfidence)
	fmt.Fprintf(&b, "- Average latency: %.1fms\n", o.AvgLatencyMS)

	b.WriteString("\nTOP ISSUE TYPES:\n")
	for _, line := range topCounts(o.IssueHist, 3) {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	b.WriteString("\nSATISFACTION BREAKDOWN:\n")
	for _, line := range topCounts(o.SatisfactionHist, 3) {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	if len(recent) > 0 {
		if len(recent) > maxRecentInPrompt {
			recent = recent[:maxRecentInPrompt]
		}
		b.WriteString("\nMOST RECENT INTERACTIONS:\n")
		for _, it := range recent {
			fmt.Fprintf(&b, "- %s / intent=%s sentiment=%s satisfaction=%s priority=%s conf=%.2f\n",
				it.IssueType, it.Intent, it.Sentiment, it.PredictedSatisfaction, it.RecommendedPriority, it.Confidence)
		}
	}

	b.WriteString(`
Provide the summary in this EXACT JSON shape:
{
  "title": "Customer Service Analytics Summary",
  "overview": "Brief 2-sentence overview of the current situation",
  "key_findings": ["finding with specific data", "..."],
  "alerts": ["critical issues requiring immediate attention"],
  "recommendations": ["specific actionable recommendation", "..."],
  "trends": "patterns observed across the data"
}
Focus on actionable insights, specific data points, and business impact.`)

	return b.String()
}

// topCounts renders the n heaviest entries of a histogram, ties broken by
// name for stable prompts.
func topCounts(hist map[string]int, n int) []string {
	if len(hist) == 0 {
		return []string{"no data available"}
	}

	type kv struct {
		k string
		v int
	}
	entries := make([]kv, 0, len(hist))
	for k, v := range hist {
		entries = append(entries, kv{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].v != entries[j].v {
			return entries[i].v > entries[j].v
		}
		return entries[i].k < entries[j].k
	})
	if len(entries) > n {
		entries = entries[:n]
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s: %d cases", e.k, e.v)
	}
	return out
}

// rates returns the high-priority and low-satisfaction percentages.
func rates(o analytics.Overview) (highRate, lowRate float64) {
	if o.TotalPredictions == 0 {
		return 0, 0
	}
	total := float64(o.TotalPredictions)
	return float64(o.HighPriority) / total * 100, float64(o.LowSatisfaction) / total * 100
}

// severityFor grades the overall situation from the measured rates, not from
// the generated text.
func severityFor(o analytics.Overview) string {
	highRate, lowRate := rates(o)
	switch {
	case highRate > 40 || lowRate > 50:
		return "high"
	case highRate > 20 || lowRate > 30:
		return "medium"
	default:
		return "low"
	}
}
