package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sentimentArtifact() Artifact {
	return Artifact{
		Capability: CapabilitySentiment,
		Version:    "v1",
		Labels: map[string]map[string]float64{
			"negative": {"frustrated": 2.0, "angry": 2.0, "terrible": 1.5, "can't": 1.0, "cannot": 1.0},
			"positive": {"thank": 1.5, "great": 1.5, "love": 2.0, "perfect": 1.5},
		},
		DefaultLabel:      "neutral",
		DefaultConfidence: 0.3,
	}
}

func TestLexicalUnit_Score(t *testing.T) {
	unit, err := NewLexicalUnit(sentimentArtifact())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		message   string
		wantLabel string
		minConf   float64
	}{
		{
			name:      "strongly negative",
			message:   "I can't log into my account and I am very frustrated!",
			wantLabel: "negative",
			minConf:   0.5,
		},
		{
			name:      "positive",
			message:   "Thank you, the new dashboard is great!",
			wantLabel: "positive",
			minConf:   0.5,
		},
		{
			name:      "no matches falls back",
			message:   "What time does the office open?",
			wantLabel: "neutral",
			minConf:   0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := unit.Score(tt.message, "general")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score.Label != tt.wantLabel {
				t.Errorf("expected label %s, got %s", tt.wantLabel, score.Label)
			}
			if score.Confidence < tt.minConf {
				t.Errorf("expected confidence >= %v, got %v", tt.minConf, score.Confidence)
			}
			if score.Confidence > 1.0 {
				t.Errorf("confidence out of range: %v", score.Confidence)
			}
		})
	}
}

func TestLexicalUnit_EmptyMessage(t *testing.T) {
	unit, err := NewLexicalUnit(sentimentArtifact())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := unit.Score("   ", "general"); !errors.Is(err, ErrScoring) {
		t.Errorf("expected ErrScoring, got %v", err)
	}
}

func TestNewLexicalUnit_Rejects(t *testing.T) {
	if _, err := NewLexicalUnit(Artifact{Version: "v1", Labels: map[string]map[string]float64{"x": {"y": 1}}}); err == nil {
		t.Error("expected error for missing capability")
	}
	if _, err := NewLexicalUnit(Artifact{Capability: "intent", Version: "v1"}); err == nil {
		t.Error("expected error for artifact with no terms")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	write := func(capability, version string, a Artifact) {
		path := filepath.Join(dir, capability, version)
		if err := os.MkdirAll(path, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		data, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := os.WriteFile(filepath.Join(path, "model.json"), data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	write(CapabilitySentiment, "v1", sentimentArtifact())
	write(CapabilityIntent, "v1", Artifact{
		Labels: map[string]map[string]float64{
			"access_issue": {"log in": 2.0, "password": 2.0},
			"refund":       {"refund": 2.0, "charged": 1.5},
		},
		DefaultLabel: "general_inquiry",
	})

	r := NewRegistry()
	loaded, errs := r.LoadDir(dir)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if loaded != 2 {
		t.Errorf("expected 2 loaded artifacts, got %d", loaded)
	}
	if missing := r.Missing(Required); len(missing) != 0 {
		t.Errorf("expected no missing capabilities, got %v", missing)
	}
}

func TestLoadDir_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sentiment", "v1")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "model.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry()
	loaded, errs := r.LoadDir(dir)
	if loaded != 0 {
		t.Errorf("expected 0 loaded, got %d", loaded)
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error, got %v", errs)
	}
}
