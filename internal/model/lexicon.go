package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact is the on-disk format the training pipeline produces, one
// model.json per (capability, version) directory.
type Artifact struct {
	Capability        string                        `json:"capability"`
	Version           string                        `json:"version"`
	Labels            map[string]map[string]float64 `json:"labels"`
	DefaultLabel      string                        `json:"default_label"`
	DefaultConfidence float64                       `json:"default_confidence"`
}

// LexicalUnit scores a message by weighted term matches per label. It is the
// demo model family; anything satisfying ScoringUnit can replace it.
type LexicalUnit struct {
	capability string
	version    string
	labels     map[string]map[string]float64
	fallback   ModelScore
}

// NewLexicalUnit builds a scoring unit from an artifact. An artifact with no
// labelled terms is rejected at load time rather than producing a unit that
// can never score.
func NewLexicalUnit(a Artifact) (*LexicalUnit, error) {
	if a.Capability == "" || a.Version == "" {
		return nil, fmt.Errorf("artifact missing capability or version")
	}
	terms := 0
	for _, lex := range a.Labels {
		terms += len(lex)
	}
	if terms == 0 {
		return nil, fmt.Errorf("artifact %s/%s has no terms", a.Capability, a.Version)
	}

	fallback := ModelScore{Label: a.DefaultLabel, Confidence: a.DefaultConfidence}
	if fallback.Label == "" {
		fallback.Label = "unknown"
	}
	if fallback.Confidence == 0 {
		fallback.Confidence = 0.3
	}

	return &LexicalUnit{
		capability: a.Capability,
		version:    a.Version,
		labels:     a.Labels,
		fallback:   fallback,
	}, nil
}

func (u *LexicalUnit) Capability() string { return u.capability }
func (u *LexicalUnit) Version() string    { return u.version }

// Score sums matched term weights per label and returns the heaviest label.
// Confidence is the winning weight over the total matched weight plus one,
// so a single weak match never claims certainty. No match falls back to the
// artifact's default label.
func (u *LexicalUnit) Score(message, issueType string) (ModelScore, error) {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return ModelScore{}, fmt.Errorf("empty message: %w", ErrScoring)
	}

	best := ""
	bestWeight := 0.0
	total := 0.0
	for label, lex := range u.labels {
		weight := 0.0
		for term, w := range lex {
			if strings.Contains(text, term) {
				weight += w
			}
		}
		total += weight
		if weight > bestWeight || (weight == bestWeight && weight > 0 && label < best) {
			best = label
			bestWeight = weight
		}
	}

	if bestWeight == 0 {
		return u.fallback, nil
	}

	conf := bestWeight / (total + 1.0)
	if conf > 1.0 {
		conf = 1.0
	}
	return ModelScore{Label: best, Confidence: conf}, nil
}

// LoadDir walks <dir>/<capability>/<version>/model.json and registers a
// lexical unit per artifact. Malformed artifacts are skipped with an error
// in the returned slice; the caller decides whether partial loads are fatal.
func (r *Registry) LoadDir(dir string) (int, []error) {
	loaded := 0
	var errs []error

	capDirs, err := os.ReadDir(dir)
	if err != nil {
		return 0, []error{fmt.Errorf("read model dir: %w", err)}
	}

	for _, capDir := range capDirs {
		if !capDir.IsDir() {
			continue
		}
		versionDirs, err := os.ReadDir(filepath.Join(dir, capDir.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("read capability dir %s: %w", capDir.Name(), err))
			continue
		}
		for _, verDir := range versionDirs {
			if !verDir.IsDir() {
				continue
			}
			path := filepath.Join(dir, capDir.Name(), verDir.Name(), "model.json")
			unit, err := loadArtifact(path, capDir.Name(), verDir.Name())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			r.Register(unit)
			loaded++
		}
	}

	return loaded, errs
}

func loadArtifact(path, capability, version string) (*LexicalUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	// Directory layout is authoritative for identity.
	a.Capability = capability
	a.Version = version

	return NewLexicalUnit(a)
}
