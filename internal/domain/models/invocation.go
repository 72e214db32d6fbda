package models

import (
	"strings"

	apperrors "github.com/Tomas-vilte/MateImpact/internal/errors"
)

// Finish reasons normalized across completion backends.
const (
	FinishReasonStop       = "stop"
	FinishReasonLength     = "length"
	FinishReasonSafety     = "safety"
	FinishReasonRecitation = "recitation"
	FinishReasonOther      = "other"
	FinishReasonUnknown    = "unknown"
)

// CompletionRequest is the input of one model call.
type CompletionRequest struct {
	System      string
	User        string
	Model       string
	Temperature float64
}

// InvocationResult is a successful completion. Failures travel as errors.
type InvocationResult struct {
	Text         string
	FinishReason string
	Model        string
	Attempt      int
}

// ModelCandidates is the ordered fallback chain, primary model first.
type ModelCandidates []string

// NewModelCandidates trims ids, drops duplicates keeping the first occurrence
// and rejects an empty chain or blank id.
func NewModelCandidates(ids ...string) (ModelCandidates, error) {
	seen := make(map[string]bool, len(ids))
	out := make(ModelCandidates, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, apperrors.ErrNoModels.WithContext("detail", "blank model id")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, apperrors.ErrNoModels
	}
	return out, nil
}

func (m ModelCandidates) Primary() string {
	if len(m) == 0 {
		return ""
	}
	return m[0]
}
