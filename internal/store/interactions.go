package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/triage/internal/inference"
)

// Interaction is one logged prediction row.
// Table: interactions (id, created_at, issue_type, intent, sentiment,
// predicted_satisfaction, recommended_priority, confidence, message_length,
// latency_ms).
type Interaction struct {
	ID                    uuid.UUID
	CreatedAt             time.Time
	IssueType             string
	Intent                string
	Sentiment             string
	PredictedSatisfaction string
	RecommendedPriority   string
	Confidence            float64
	MessageLength         int
	LatencyMS             float64
}

// WriteInteraction logs one prediction. The raw message text is not stored,
// only its length — the log is for analytics, not transcripts.
func (s *Store) WriteInteraction(ctx context.Context, p inference.Prediction, latency time.Duration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interactions
			(id, created_at, issue_type, intent, sentiment, predicted_satisfaction,
			 recommended_priority, confidence, message_length, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Timestamp, p.IssueType, p.Intent, p.Sentiment, p.PredictedSatisfaction,
		p.RecommendedPriority, p.Confidence, len(p.Message), float64(latency.Microseconds())/1000.0,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// RecentInteractions returns the newest rows, most recent first. The
// insights generator folds them into its prompt context.
func (s *Store) RecentInteractions(ctx context.Context, limit int) ([]Interaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, created_at, issue_type, intent, sentiment, predicted_satisfaction,
		       recommended_priority, confidence, message_length, latency_ms
		FROM interactions
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(
			&it.ID, &it.CreatedAt, &it.IssueType, &it.Intent, &it.Sentiment,
			&it.PredictedSatisfaction, &it.RecommendedPriority, &it.Confidence,
			&it.MessageLength, &it.LatencyMS,
		); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}
