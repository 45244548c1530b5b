package analytics

// Overview folds a bucket snapshot into whole-window totals. It is what the
// dashboard's overview block and the insights prompt consume.
type Overview struct {
	TotalPredictions int            `json:"total_predictions"`
	HighPriority     int            `json:"high_priority"`
	LowSatisfaction  int            `json:"low_satisfaction"`
	AvgConfidence    float64        `json:"avg_confidence"`
	AvgLatencyMS     float64        `json:"avg_latency_ms"`
	IssueHist        map[string]int `json:"issue_histogram"`
	SatisfactionHist map[string]int `json:"satisfaction_histogram"`
	PriorityHist     map[string]int `json:"priority_histogram"`
	BucketCount      int            `json:"bucket_count"`
}

// Summarize computes an Overview from a snapshot. Averages are weighted by
// bucket counts.
func Summarize(buckets []MetricBucket) Overview {
	o := Overview{
		IssueHist:        make(map[string]int),
		SatisfactionHist: make(map[string]int),
		PriorityHist:     make(map[string]int),
		BucketCount:      len(buckets),
	}

	confSum := 0.0
	latSum := 0.0
	for _, b := range buckets {
		o.TotalPredictions += b.Count
		confSum += b.AvgConfidence * float64(b.Count)
		latSum += b.AvgLatencyMS * float64(b.Count)
		for k, v := range b.IssueHist {
			o.IssueHist[k] += v
		}
		for k, v := range b.SatisfactionHist {
			o.SatisfactionHist[k] += v
		}
		for k, v := range b.PriorityHist {
			o.PriorityHist[k] += v
		}
	}

	o.HighPriority = o.PriorityHist["high"]
	o.LowSatisfaction = o.SatisfactionHist["low"]
	if o.TotalPredictions > 0 {
		o.AvgConfidence = confSum / float64(o.TotalPredictions)
		o.AvgLatencyMS = latSum / float64(o.TotalPredictions)
	}
	return o
}
