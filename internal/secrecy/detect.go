// Package secrecy scans article text for signs that a lab is withholding
// capability information. Detection is a pure pattern scan over lowercased
// content; it produces indicators that feed a small score boost, never a
// classification on its own.
package secrecy

import (
	"strings"
	"time"
)

const (
	perIndicatorBoost = 0.05
	maxBoost          = 0.10
)

// Indicator records one matched secrecy pattern in a document.
type Indicator struct {
	Pattern    string    `json:"pattern"`
	Excerpt    string    `json:"excerpt"`
	Source     string    `json:"source"`
	DetectedAt time.Time `json:"detected_at"`
}

// Patterns that suggest deliberate non-disclosure of capability results.
// Kept lowercase; matching is case-insensitive substring search.
var secrecyPatterns = []string{
	"will not be releasing",
	"not releasing details",
	"declined to disclose",
	"declined to share",
	"withheld from publication",
	"withholding the results",
	"no longer publish",
	"stopped publishing",
	"internal use only",
	"internal evaluation only",
	"under embargo",
	"undisclosed benchmark",
	"unpublished results",
	"behind closed doors",
	"closed-door demo",
	"staggered release",
	"staged deployment",
	"capabilities we cannot discuss",
	"cannot share specifics",
	"redacted",
}

const excerptRadius = 60

// Detect scans content for secrecy patterns and returns one indicator per
// matched pattern with a short surrounding excerpt. A nil return means no
// pattern matched.
func Detect(content, source string, ts time.Time) []Indicator {
	if content == "" {
		return nil
	}

	lower := strings.ToLower(content)

	var indicators []Indicator
	for _, pattern := range secrecyPatterns {
		idx := strings.Index(lower, pattern)
		if idx < 0 {
			continue
		}

		indicators = append(indicators, Indicator{
			Pattern:    pattern,
			Excerpt:    excerpt(content, idx, len(pattern)),
			Source:     source,
			DetectedAt: ts,
		})
	}

	return indicators
}

// Boost converts matched indicators into the additive score boost consumed
// by the combiner, capped so secrecy alone never dominates.
func Boost(indicators []Indicator) float64 {
	boost := float64(len(indicators)) * perIndicatorBoost
	if boost > maxBoost {
		boost = maxBoost
	}
	return boost
}

func excerpt(content string, idx, matchLen int) string {
	start := idx - excerptRadius
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + excerptRadius
	if end > len(content) {
		end = len(content)
	}
	return strings.TrimSpace(content[start:end])
}
