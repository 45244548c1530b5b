// Package events mirrors predictions onto NATS for external consumers
// (dashboards, alert routers). The mirror is optional and strictly
// fire-and-forget: a down broker never gates an HTTP response.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MikeSquared-Agency/triage/internal/inference"
)

const (
	// SubjectPredictionRecorded carries every prediction the gateway serves.
	SubjectPredictionRecorded = "support.prediction.recorded"

	// SubjectHighPriorityAlert fires when a prediction combines low
	// satisfaction with high recommended priority.
	SubjectHighPriorityAlert = "support.alert.high_priority"
)

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// PublishPrediction mirrors one prediction, escalating to the alert subject
// when warranted. Errors are logged and dropped. Safe on a nil client.
func (c *Client) PublishPrediction(p inference.Prediction, latency time.Duration) {
	if c == nil {
		return
	}

	payload := PredictionEvent(p, latency)
	if err := c.Publish(SubjectPredictionRecorded, payload); err != nil {
		c.logger.Warn("failed to publish prediction event", "error", err)
	}

	if ShouldAlert(p) {
		if err := c.Publish(SubjectHighPriorityAlert, payload); err != nil {
			c.logger.Warn("failed to publish high priority alert", "error", err)
		}
	}
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	c.conn.Close()
}

// ShouldAlert reports whether a prediction crosses the escalation bar:
// an unhappy customer whose case the chain wants looked at first.
func ShouldAlert(p inference.Prediction) bool {
	return p.RecommendedPriority == inference.LevelHigh &&
		p.PredictedSatisfaction == inference.LevelLow
}

// PredictionEvent shapes the wire payload for both subjects.
func PredictionEvent(p inference.Prediction, latency time.Duration) map[string]any {
	return map[string]any{
		"id":                     p.ID.String(),
		"issue_type":             p.IssueType,
		"intent":                 p.Intent,
		"sentiment":              p.Sentiment,
		"predicted_satisfaction": p.PredictedSatisfaction,
		"recommended_priority":   p.RecommendedPriority,
		"confidence":             p.Confidence,
		"latency_ms":             float64(latency.Microseconds()) / 1000.0,
		"timestamp":              p.Timestamp.Format(time.RFC3339),
	}
}
