package inference

import (
	"time"

	"github.com/google/uuid"
)

// Issue types a request may carry. Unknown values fail validation at the
// gateway rather than silently defaulting.
const (
	IssueGeneral          = "general"
	IssueAccountAccess    = "account_access"
	IssueBilling          = "billing"
	IssueShipping         = "shipping"
	IssueTechnicalSupport = "technical_support"
	IssueComplaint        = "complaint"
	IssueCompliment       = "compliment"
)

var issueTypes = map[string]bool{
	IssueGeneral:          true,
	IssueAccountAccess:    true,
	IssueBilling:          true,
	IssueShipping:         true,
	IssueTechnicalSupport: true,
	IssueComplaint:        true,
	IssueCompliment:       true,
}

// ValidIssueType reports whether s is a known issue type.
func ValidIssueType(s string) bool { return issueTypes[s] }

// Satisfaction and priority levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// PredictionRequest is one incoming support message. Transient,
// request-scoped.
type PredictionRequest struct {
	Message   string `json:"message"`
	IssueType string `json:"issue_type"`
}

// Prediction is the combined outcome of the inference chain for one request.
// Never mutated after creation; handed by value to the analytics sink.
type Prediction struct {
	ID                    uuid.UUID `json:"id"`
	Message               string    `json:"message"`
	IssueType             string    `json:"issue_type"`
	Intent                string    `json:"intent"`
	Sentiment             string    `json:"sentiment"`
	PredictedSatisfaction string    `json:"predicted_satisfaction"`
	RecommendedPriority   string    `json:"recommended_priority"`
	Confidence            float64   `json:"confidence"`
	Timestamp             time.Time `json:"timestamp"`
}
