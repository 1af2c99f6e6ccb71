package score

import "github.com/pkozlov/agiwatch/internal/model"

// SeverityForScore maps a combined score to a severity tier
func SeverityForScore(score float64) model.Severity {
	switch {
	case score <= 0:
		return model.SeverityNone
	case score < 0.3:
		return model.SeverityLow
	case score < 0.6:
		return model.SeverityMedium
	case score < 0.8:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}

// ComputeSeverity maps the score to a tier and ratchets against the prior:
// a later, lower-scoring pass may never downgrade an earlier finding.
//
// The evidence gate holds the top tier back unless at least one claim
// carries a numeric benchmark delta - model/heuristic agreement alone is
// not enough for critical.
func ComputeSeverity(score float64, prior model.Severity, claims []model.Claim) model.Severity {
	computed := SeverityForScore(score)

	if computed == model.SeverityCritical && !hasNumericDelta(claims) {
		computed = model.SeverityHigh
	}

	if prior > computed {
		return prior
	}
	return computed
}

// hasNumericDelta reports whether any claim carries a benchmark with a
// numeric delta
func hasNumericDelta(claims []model.Claim) bool {
	for _, claim := range claims {
		if claim.Benchmark != "" && claim.Delta != nil {
			return true
		}
	}
	return false
}

// ValidRecommendation reports whether a validation-pass recommendation is
// one of the recognized override verbs
func ValidRecommendation(rec string) bool {
	switch rec {
	case "investigate", "confirm", "dismiss":
		return true
	}
	return false
}
