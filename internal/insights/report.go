package insights

import (
	"time"

	"github.com/google/uuid"
)

// InsightReport is one generated summary of the current metrics. Immutable
// once produced; the next generation cycle supersedes it wholesale rather
// than merging into it.
type InsightReport struct {
	ID                 uuid.UUID `json:"id"`
	GeneratedAt        time.Time `json:"generated_at"`
	Title              string    `json:"title"`
	SummaryText        string    `json:"summary_text"`
	KeyFindings        []string  `json:"key_findings"`
	Alerts             []string  `json:"alerts"`
	Recommendations    []string  `json:"recommendations"`
	Trends             string    `json:"trends"`
	Severity           string    `json:"severity"`
	BasedOnBucketCount int       `json:"based_on_bucket_count"`
	DataPoints         int       `json:"data_points"`

	// Degraded marks a report retained past its freshness window because
	// the generation backend failed.
	Degraded bool `json:"degraded"`
}

// degradedCopy returns the same report flagged stale. The original stays
// untouched so concurrent readers holding it are unaffected.
func degradedCopy(r *InsightReport) *InsightReport {
	cp := *r
	cp.Degraded = true
	return &cp
}
