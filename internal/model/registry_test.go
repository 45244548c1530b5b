package model

import (
	"errors"
	"testing"
)

type stubUnit struct {
	cap     string
	version string
	score   ModelScore
}

func (s stubUnit) Capability() string { return s.cap }
func (s stubUnit) Version() string    { return s.version }
func (s stubUnit) Score(message, issueType string) (ModelScore, error) {
	return s.score, nil
}

func TestResolve_LatestVersion(t *testing.T) {
	r := NewRegistry()
	r.Register(stubUnit{cap: CapabilitySentiment, version: "v1", score: ModelScore{Label: "old"}})
	r.Register(stubUnit{cap: CapabilitySentiment, version: "v2", score: ModelScore{Label: "new"}})

	u, err := r.Resolve(CapabilitySentiment, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Version() != "v2" {
		t.Errorf("expected latest version v2, got %s", u.Version())
	}

	u, err = r.Resolve(CapabilitySentiment, "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Version() != "v1" {
		t.Errorf("expected pinned version v1, got %s", u.Version())
	}
}

func TestResolve_Unavailable(t *testing.T) {
	r := NewRegistry()
	r.Register(stubUnit{cap: CapabilityIntent, version: "v1"})

	tests := []struct {
		name       string
		capability string
		version    string
	}{
		{"missing capability", CapabilitySentiment, ""},
		{"missing version", CapabilityIntent, "v9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.capability, tt.version)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", err)
			}
		})
	}
}

func TestMissing(t *testing.T) {
	r := NewRegistry()
	r.Register(stubUnit{cap: CapabilityIntent, version: "v1"})

	missing := r.Missing(Required)
	if len(missing) != 1 || missing[0] != CapabilitySentiment {
		t.Errorf("expected [sentiment], got %v", missing)
	}

	r.Register(stubUnit{cap: CapabilitySentiment, version: "v1"})
	if missing := r.Missing(Required); len(missing) != 0 {
		t.Errorf("expected no missing capabilities, got %v", missing)
	}
}
