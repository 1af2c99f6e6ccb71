package model

import "time"

// Severity classifies a finding into ordered risk tiers
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "none"
	}
}

// ParseSeverity parses a severity string; unknown values map to none
func ParseSeverity(s string) Severity {
	switch s {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityNone
	}
}

// AnalysisResult is the scored outcome for exactly one document.
// Severity is monotonically non-decreasing across successive writes:
// a later computation may raise but never lower it.
type AnalysisResult struct {
	DocumentID           string            `json:"document_id"`
	ModelScore           float64           `json:"model_score"`           // 0-1 from the oracle
	HeuristicScore       float64           `json:"heuristic_score"`       // 0-HeuristicMax
	CorroborationPenalty float64           `json:"corroboration_penalty"` // >= 0
	SecrecyBoost         float64           `json:"secrecy_boost"`         // >= 0
	CombinedScore        float64           `json:"combined_score"`        // 0-1
	Severity             Severity          `json:"severity"`
	Confidence           float64           `json:"confidence"` // 0-1
	Indicators           []string          `json:"indicators,omitempty"`
	CrossReferences      []string          `json:"cross_references,omitempty"`
	Breakdown            Breakdown         `json:"breakdown"`
	LastValidation       *ValidationRecord `json:"last_validation,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// Breakdown records every input to the combined score for later audit
type Breakdown struct {
	ModelWeight     float64  `json:"model_weight"`
	HeuristicWeight float64  `json:"heuristic_weight"`
	Signals         []Signal `json:"signals,omitempty"`
	Filtered        bool     `json:"filtered,omitempty"` // True when triage skipped the oracle
	FilterReason    string   `json:"filter_reason,omitempty"`
}

// Signal is one named scoring contribution with transparent data
type Signal struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Detail string  `json:"detail,omitempty"`
}

// ValidationRecord is the audit trail of an explicit re-validation pass
type ValidationRecord struct {
	ValidatedAt    time.Time `json:"validated_at"`
	Recommendation string    `json:"recommendation"` // investigate, confirm, dismiss
	PriorScore     float64   `json:"prior_score"`
	NewScore       float64   `json:"new_score"`
	Notes          string    `json:"notes,omitempty"`
}
