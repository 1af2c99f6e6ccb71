package analyze

import (
	"strings"

	"github.com/pkozlov/agiwatch/internal/model"
)

// Fixed result assigned to triaged-out documents. The high confidence is
// deliberate: we are confident the article is irrelevant, not uncertain
// about its risk.
const (
	filteredScore      = 0.05
	filteredConfidence = 0.9
)

// Terms a capability-relevant article is expected to mention at least once
var relevanceTerms = []string{
	"model", "ai", "benchmark", "capability", "capabilities", "reasoning",
	"training", "agi", "intelligence", "evaluation", "llm", "agent",
}

// Terms marking marketing and recruiting noise
var noiseTerms = []string{
	"webinar", "limited time offer", "discount", "sponsored post",
	"we're hiring", "job opening", "careers at", "sign up for our newsletter",
	"subscribe now", "black friday",
}

// triage decides whether a document should skip the oracle entirely.
// It returns a non-empty reason when the document is filtered.
func triage(doc model.Document) string {
	text := strings.ToLower(doc.Title + " " + doc.Content)

	for _, term := range noiseTerms {
		if strings.Contains(text, term) {
			return "marketing noise: " + term
		}
	}

	for _, term := range relevanceTerms {
		if strings.Contains(text, term) {
			return ""
		}
	}
	return "no capability-relevant terms"
}

// filteredResult builds the fixed low-score analysis for a triaged document
func filteredResult(doc model.Document, prior model.Severity, reason string) model.AnalysisResult {
	return model.AnalysisResult{
		DocumentID:    doc.ID,
		CombinedScore: filteredScore,
		Severity:      maxSeverity(prior, model.SeverityLow),
		Confidence:    filteredConfidence,
		Breakdown: model.Breakdown{
			Filtered:     true,
			FilterReason: reason,
		},
	}
}

func maxSeverity(a, b model.Severity) model.Severity {
	if a > b {
		return a
	}
	return b
}
