package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/triage/internal/inference"
)

// predict handles POST /predict. Validation happens before the orchestrator
// is invoked; recording happens after the response is shaped and never
// blocks it.
func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req inference.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing_message", "message must be non-empty")
		return
	}
	if !inference.ValidIssueType(req.IssueType) {
		writeError(w, http.StatusBadRequest, "invalid_issue_type", "unknown issue_type: "+req.IssueType)
		return
	}

	pred, err := s.orchestrator.Infer(r.Context(), req)
	if err != nil {
		if errors.Is(err, inference.ErrPredictionUnavailable) {
			s.logger.Error("prediction unavailable", "issue_type", req.IssueType, "error", err)
			writeError(w, http.StatusServiceUnavailable, "prediction_unavailable", "a required model is not loaded")
			return
		}
		s.logger.Error("inference failed", "issue_type", req.IssueType, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "inference failed")
		return
	}

	latency := time.Since(start)
	writeJSON(w, http.StatusOK, pred)

	go s.record(pred, latency)
}
