package inference

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/MikeSquared-Agency/triage/internal/model"
)

type stubUnit struct {
	capability string
	score      model.ModelScore
	err        error
	panics     bool
}

func (s stubUnit) Capability() string { return s.capability }
func (s stubUnit) Version() string    { return "v1" }
func (s stubUnit) Score(message, issueType string) (model.ModelScore, error) {
	if s.panics {
		panic("model blew up")
	}
	return s.score, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrchestrator(intent, sentiment model.ScoringUnit) *Orchestrator {
	r := model.NewRegistry()
	if intent != nil {
		r.Register(intent)
	}
	if sentiment != nil {
		r.Register(sentiment)
	}
	return New(r, DefaultThresholds(), discardLogger())
}

func TestInfer_CombinationPolicy(t *testing.T) {
	tests := []struct {
		name             string
		sentiment        model.ModelScore
		issueType        string
		wantSatisfaction string
		wantPriority     string
	}{
		{
			name:             "negative complaint is high priority",
			sentiment:        model.ModelScore{Label: "negative", Confidence: 0.9},
			issueType:        IssueComplaint,
			wantSatisfaction: LevelLow,
			wantPriority:     LevelHigh,
		},
		{
			name:             "negative account access is high priority",
			sentiment:        model.ModelScore{Label: "negative", Confidence: 0.7},
			issueType:        IssueAccountAccess,
			wantSatisfaction: LevelLow,
			wantPriority:     LevelHigh,
		},
		{
			name:             "negative billing is medium priority",
			sentiment:        model.ModelScore{Label: "negative", Confidence: 0.7},
			issueType:        IssueBilling,
			wantSatisfaction: LevelLow,
			wantPriority:     LevelMedium,
		},
		{
			name:             "positive is high satisfaction low priority",
			sentiment:        model.ModelScore{Label: "positive", Confidence: 0.8},
			issueType:        IssueCompliment,
			wantSatisfaction: LevelHigh,
			wantPriority:     LevelLow,
		},
		{
			name:             "low confidence negative is medium",
			sentiment:        model.ModelScore{Label: "negative", Confidence: 0.4},
			issueType:        IssueComplaint,
			wantSatisfaction: LevelMedium,
			wantPriority:     LevelMedium,
		},
		{
			name:             "neutral is medium",
			sentiment:        model.ModelScore{Label: "neutral", Confidence: 0.9},
			issueType:        IssueGeneral,
			wantSatisfaction: LevelMedium,
			wantPriority:     LevelMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(
				stubUnit{capability: model.CapabilityIntent, score: model.ModelScore{Label: "access_issue", Confidence: 0.95}},
				stubUnit{capability: model.CapabilitySentiment, score: tt.sentiment},
			)

			pred, err := o.Infer(context.Background(), PredictionRequest{Message: "help", IssueType: tt.issueType})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pred.PredictedSatisfaction != tt.wantSatisfaction {
				t.Errorf("satisfaction: got %s, want %s", pred.PredictedSatisfaction, tt.wantSatisfaction)
			}
			if pred.RecommendedPriority != tt.wantPriority {
				t.Errorf("priority: got %s, want %s", pred.RecommendedPriority, tt.wantPriority)
			}
		})
	}
}

func TestInfer_ConfidenceIsMinOfStages(t *testing.T) {
	o := newOrchestrator(
		stubUnit{capability: model.CapabilityIntent, score: model.ModelScore{Label: "refund", Confidence: 0.42}},
		stubUnit{capability: model.CapabilitySentiment, score: model.ModelScore{Label: "negative", Confidence: 0.88}},
	)

	pred, err := o.Infer(context.Background(), PredictionRequest{Message: "refund me", IssueType: IssueBilling})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Confidence != 0.42 {
		t.Errorf("expected confidence 0.42 (weakest link), got %v", pred.Confidence)
	}
}

func TestInfer_MissingCapabilityFailsRequest(t *testing.T) {
	o := newOrchestrator(
		stubUnit{capability: model.CapabilityIntent, score: model.ModelScore{Label: "x", Confidence: 0.9}},
		nil,
	)

	_, err := o.Infer(context.Background(), PredictionRequest{Message: "help", IssueType: IssueGeneral})
	if !errors.Is(err, ErrPredictionUnavailable) {
		t.Errorf("expected ErrPredictionUnavailable, got %v", err)
	}
}

func TestInfer_ScoringFaultSubstitutesNeutral(t *testing.T) {
	o := newOrchestrator(
		stubUnit{capability: model.CapabilityIntent, err: model.ErrScoring},
		stubUnit{capability: model.CapabilitySentiment, score: model.ModelScore{Label: "negative", Confidence: 0.9}},
	)

	pred, err := o.Infer(context.Background(), PredictionRequest{Message: "help", IssueType: IssueComplaint})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Intent != "unknown" {
		t.Errorf("expected neutral intent label, got %s", pred.Intent)
	}
	// The neutral score has confidence 0, which drags the min down.
	if pred.Confidence != 0.0 {
		t.Errorf("expected confidence 0.0, got %v", pred.Confidence)
	}
	// Sentiment stage still drives the decision.
	if pred.PredictedSatisfaction != LevelLow || pred.RecommendedPriority != LevelHigh {
		t.Errorf("expected low/high, got %s/%s", pred.PredictedSatisfaction, pred.RecommendedPriority)
	}
}

func TestInfer_PanickingUnitIsContained(t *testing.T) {
	o := newOrchestrator(
		stubUnit{capability: model.CapabilityIntent, panics: true},
		stubUnit{capability: model.CapabilitySentiment, score: model.ModelScore{Label: "positive", Confidence: 0.8}},
	)

	pred, err := o.Infer(context.Background(), PredictionRequest{Message: "thanks", IssueType: IssueCompliment})
	if err != nil {
		t.Fatalf("expected panic to be contained, got error: %v", err)
	}
	if pred.Intent != "unknown" {
		t.Errorf("expected neutral intent after panic, got %s", pred.Intent)
	}
}

func TestInfer_ConfigurableThreshold(t *testing.T) {
	r := model.NewRegistry()
	r.Register(stubUnit{capability: model.CapabilityIntent, score: model.ModelScore{Label: "x", Confidence: 0.9}})
	r.Register(stubUnit{capability: model.CapabilitySentiment, score: model.ModelScore{Label: "negative", Confidence: 0.6}})

	o := New(r, Thresholds{SentimentConfidence: 0.7}, discardLogger())
	pred, err := o.Infer(context.Background(), PredictionRequest{Message: "help", IssueType: IssueComplaint})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.PredictedSatisfaction != LevelMedium {
		t.Errorf("raised threshold should yield medium, got %s", pred.PredictedSatisfaction)
	}
}

func TestValidIssueType(t *testing.T) {
	for _, typ := range []string{IssueGeneral, IssueAccountAccess, IssueBilling, IssueShipping, IssueTechnicalSupport, IssueComplaint, IssueCompliment} {
		if !ValidIssueType(typ) {
			t.Errorf("expected %s to be valid", typ)
		}
	}
	if ValidIssueType("not_a_real_type") {
		t.Error("expected unknown issue type to be invalid")
	}
}
