package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/triage/internal/model"
)

// ErrPredictionUnavailable means a required capability had no loaded model,
// so the whole request fails. A guessed prediction is worse than an explicit
// error here.
var ErrPredictionUnavailable = errors.New("prediction unavailable")

// Thresholds control how raw model scores combine into a satisfaction level.
// Defaults match the demo models; deployments with different model families
// tune them through config.
type Thresholds struct {
	SentimentConfidence float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{SentimentConfidence: 0.5}
}

// Orchestrator sequences model registry calls into one Prediction per
// request. The chain is short and CPU-light, so the stages run sequentially
// within the caller's goroutine.
type Orchestrator struct {
	registry   *model.Registry
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

func New(registry *model.Registry, thresholds Thresholds, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:   registry,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// Infer runs the fixed chain: intent scoring, sentiment scoring, then the
// combination heuristic over both scores and the issue type.
//
// A stage whose capability is missing fails the request with
// ErrPredictionUnavailable. A stage that faults mid-evaluation is replaced
// with a neutral score and the chain continues — single-model noise must not
// take down satisfaction estimation for the other stage.
func (o *Orchestrator) Infer(ctx context.Context, req PredictionRequest) (Prediction, error) {
	intent, err := o.runStage(model.CapabilityIntent, req)
	if err != nil {
		return Prediction{}, err
	}

	sentiment, err := o.runStage(model.CapabilitySentiment, req)
	if err != nil {
		return Prediction{}, err
	}

	satisfaction := o.satisfaction(sentiment)
	priority := recommendPriority(req.IssueType, satisfaction)

	return Prediction{
		ID:                    uuid.New(),
		Message:               req.Message,
		IssueType:             req.IssueType,
		Intent:                intent.Label,
		Sentiment:             sentiment.Label,
		PredictedSatisfaction: satisfaction,
		RecommendedPriority:   priority,
		Confidence:            math.Min(intent.Confidence, sentiment.Confidence),
		Timestamp:             o.now().UTC(),
	}, nil
}

func (o *Orchestrator) runStage(capability string, req PredictionRequest) (model.ModelScore, error) {
	unit, err := o.registry.Resolve(capability, "")
	if err != nil {
		if errors.Is(err, model.ErrUnavailable) {
			return model.ModelScore{}, fmt.Errorf("%s stage: %w", capability, ErrPredictionUnavailable)
		}
		return model.ModelScore{}, fmt.Errorf("%s stage: %w", capability, err)
	}

	score, err := safeScore(unit, req.Message, req.IssueType)
	if err != nil {
		if errors.Is(err, model.ErrScoring) {
			o.logger.Warn("scoring fault, substituting neutral score",
				"capability", capability,
				"version", unit.Version(),
				"error", err,
			)
			return model.ModelScore{Label: "unknown", Confidence: 0.0}, nil
		}
		return model.ModelScore{}, fmt.Errorf("%s stage: %w", capability, err)
	}
	return score, nil
}

// safeScore converts a panicking scoring unit into ErrScoring so one
// misbehaving model never aborts the chain as a raw fault.
func safeScore(unit model.ScoringUnit, message, issueType string) (score model.ModelScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s/%s: %v: %w", unit.Capability(), unit.Version(), r, model.ErrScoring)
		}
	}()
	return unit.Score(message, issueType)
}

func (o *Orchestrator) satisfaction(sentiment model.ModelScore) string {
	if sentiment.Confidence >= o.thresholds.SentimentConfidence {
		switch sentiment.Label {
		case "negative":
			return LevelLow
		case "positive":
			return LevelHigh
		}
	}
	return LevelMedium
}

func recommendPriority(issueType, satisfaction string) string {
	if satisfaction == LevelLow && (issueType == IssueComplaint || issueType == IssueAccountAccess) {
		return LevelHigh
	}
	if satisfaction == LevelHigh {
		return LevelLow
	}
	return LevelMedium
}
