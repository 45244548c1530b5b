// Package analytics maintains rolling time-bucketed metrics over the stream
// of predictions. All bucket state lives behind the Aggregator; nothing
// outside this package ever holds a mutable bucket.
package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/triage/internal/inference"
)

// MetricBucket is one fixed-width time window of aggregated predictions.
// Snapshots return copies; the histograms in a snapshot are never shared
// with the live bucket.
type MetricBucket struct {
	WindowStart      time.Time      `json:"window_start"`
	Count            int            `json:"count"`
	SatisfactionHist map[string]int `json:"satisfaction_histogram"`
	PriorityHist     map[string]int `json:"priority_histogram"`
	IssueHist        map[string]int `json:"issue_histogram"`
	AvgConfidence    float64        `json:"avg_confidence"`
	AvgLatencyMS     float64        `json:"avg_latency_ms"`
}

// bucket is the live, mutable counterpart of MetricBucket. Its own mutex
// serializes updates so concurrent writers only contend on the window they
// both touch, not on the whole aggregator.
type bucket struct {
	mu           sync.Mutex
	windowStart  time.Time
	count        int
	satisfaction map[string]int
	priority     map[string]int
	issue        map[string]int
	avgConf      float64
	avgLatencyMS float64
}

// Aggregator is the shared analytics sink: many gateway goroutines call
// Record concurrently while the insights generator reads Snapshot on its own
// schedule.
type Aggregator struct {
	width     time.Duration
	retention time.Duration
	now       func() time.Time

	mu      sync.RWMutex // guards the bucket map, not bucket contents
	buckets map[int64]*bucket
}

func New(width, retention time.Duration) *Aggregator {
	return NewWithClock(width, retention, time.Now)
}

// NewWithClock injects the clock. Tests pin it to make bucketing and
// eviction deterministic.
func NewWithClock(width, retention time.Duration, now func() time.Time) *Aggregator {
	if width <= 0 {
		width = time.Minute
	}
	if retention < width {
		retention = width
	}
	return &Aggregator{
		width:     width,
		retention: retention,
		now:       now,
		buckets:   make(map[int64]*bucket),
	}
}

// Record folds one prediction into the bucket for the current time, using
// online mean updates — no recomputation over raw history. Buckets past the
// retention horizon are evicted on the way in; there is no background sweep.
func (a *Aggregator) Record(p inference.Prediction, latency time.Duration) {
	now := a.now()
	key := now.Truncate(a.width).Unix()

	a.mu.Lock()
	a.evictLocked(now)
	b, ok := a.buckets[key]
	if !ok {
		b = &bucket{
			windowStart:  time.Unix(key, 0).UTC(),
			satisfaction: make(map[string]int),
			priority:     make(map[string]int),
			issue:        make(map[string]int),
		}
		a.buckets[key] = b
	}
	a.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	b.satisfaction[p.PredictedSatisfaction]++
	b.priority[p.RecommendedPriority]++
	b.issue[p.IssueType]++
	n := float64(b.count)
	b.avgConf += (p.Confidence - b.avgConf) / n
	b.avgLatencyMS += (float64(latency.Microseconds())/1000.0 - b.avgLatencyMS) / n
}

// Snapshot returns an immutable copy of all retained buckets ordered by
// window start. Each bucket is copied under its own lock, so a reader never
// observes a bucket mid-update; the set as a whole may be slightly stale.
func (a *Aggregator) Snapshot() []MetricBucket {
	now := a.now()

	a.mu.Lock()
	a.evictLocked(now)
	live := make([]*bucket, 0, len(a.buckets))
	for _, b := range a.buckets {
		live = append(live, b)
	}
	a.mu.Unlock()

	out := make([]MetricBucket, 0, len(live))
	for _, b := range live {
		b.mu.Lock()
		out = append(out, MetricBucket{
			WindowStart:      b.windowStart,
			Count:            b.count,
			SatisfactionHist: copyHist(b.satisfaction),
			PriorityHist:     copyHist(b.priority),
			IssueHist:        copyHist(b.issue),
			AvgConfidence:    b.avgConf,
			AvgLatencyMS:     b.avgLatencyMS,
		})
		b.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].WindowStart.Before(out[j].WindowStart) })
	return out
}

// Reset drops all buckets. A process restart has the same effect; this
// exists for explicit resets.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buckets = make(map[int64]*bucket)
}

// evictLocked removes buckets whose window start is past the retention
// horizon. Caller holds a.mu.
func (a *Aggregator) evictLocked(now time.Time) {
	cutoff := now.Add(-a.retention).Truncate(a.width).Unix()
	for key := range a.buckets {
		if key < cutoff {
			delete(a.buckets, key)
		}
	}
}

func copyHist(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
