package model

import "errors"

// Capabilities the inference chain depends on. A registry may hold more
// (e.g. response-template experiments), but these two must be loaded for
// the service to report healthy.
const (
	CapabilityIntent    = "intent"
	CapabilitySentiment = "sentiment"
)

// Required is the set of capabilities the inference chain calls.
var Required = []string{CapabilityIntent, CapabilitySentiment}

var (
	// ErrUnavailable means the named capability/version has no loaded artifact.
	ErrUnavailable = errors.New("model unavailable")

	// ErrScoring means a scoring unit failed mid-evaluation. Callers recover
	// from it locally; it never fails a whole request on its own.
	ErrScoring = errors.New("scoring failed")
)

// ModelScore is the output of one scoring unit call. Immutable once produced.
type ModelScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ScoringUnit is the minimal contract a model must satisfy to participate in
// the inference chain. Score is synchronous and must return within a bounded
// time budget; it has no side effects beyond its own internal counters.
type ScoringUnit interface {
	Capability() string
	Version() string
	Score(message, issueType string) (ModelScore, error)
}
