package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkozlov/agiwatch/internal/model"
)

// Tag vocabulary assigned by keyword co-occurrence
var tagTerms = map[string][]string{
	"human-level":      {"human-level", "human level", "surpass human", "surpasses human", "surpassed human", "exceeds human", "above human"},
	"generalization":   {"generaliz", "out-of-distribution", "zero-shot", "novel task"},
	"self-improvement": {"self-improv", "recursive improvement", "improves itself"},
	"autonomy":         {"autonomous", "without human", "unsupervised operation"},
}

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	scorePattern   = regexp.MustCompile(`(?i)\b(?:scored?|achiev\w+|reach\w+|hits?|at)\s+(\d+(?:\.\d+)?)\b`)

	deltaFromTo  = regexp.MustCompile(`(?i)from\s+(\d+(?:\.\d+)?)\s*%?\s+to\s+(\d+(?:\.\d+)?)\s*%?`)
	deltaArrow   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%?\s*(?:→|->)\s*(\d+(?:\.\d+)?)\s*%?`)
	deltaImprove = regexp.MustCompile(`(?i)improv\w*\b[^.]*?by\s+(\d+(?:\.\d+)?)\s*(%|points?|pp)?`)
)

// ClaimParser turns one snippet into a structured claim when the snippet
// carries a benchmark name or a numeric pattern
type ClaimParser struct{}

// NewClaimParser creates a claim parser
func NewClaimParser() *ClaimParser {
	return &ClaimParser{}
}

// Parse extracts a claim from a snippet. The returned claim's Evidence is
// always the snippet text itself. Returns false when neither a benchmark
// nor a numeric pattern matched.
func (p *ClaimParser) Parse(snippet string) (model.Claim, bool) {
	benchmark := FindBenchmark(snippet)
	value, unit := parseValue(snippet)
	delta, deltaUnit := parseDelta(snippet)

	if benchmark == "" && value == nil && delta == nil {
		return model.Claim{}, false
	}

	claim := model.Claim{
		Statement: buildStatement(benchmark, value, unit, delta, deltaUnit),
		Evidence:  snippet,
		Benchmark: benchmark,
		Value:     value,
		Delta:     delta,
		Unit:      unit,
		Tags:      assignTags(snippet),
	}
	if claim.Unit == "" {
		claim.Unit = deltaUnit
	}
	if benchmark != "" && value != nil {
		claim.Metric = "score"
	}

	return claim, true
}

// parseValue finds a numeric score; percentages are normalized to 0-1
func parseValue(snippet string) (*float64, string) {
	if m := percentPattern.FindStringSubmatch(snippet); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			normalized := v / 100
			return &normalized, "%"
		}
	}
	if m := scorePattern.FindStringSubmatch(snippet); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v, ""
		}
	}
	return nil, ""
}

// parseDelta finds an improvement pattern: "from X to Y", "X → Y",
// or "improves ... by X%". Delta is reported in raw points.
func parseDelta(snippet string) (*float64, string) {
	for _, pattern := range []*regexp.Regexp{deltaFromTo, deltaArrow} {
		if m := pattern.FindStringSubmatch(snippet); m != nil {
			from, err1 := strconv.ParseFloat(m[1], 64)
			to, err2 := strconv.ParseFloat(m[2], 64)
			if err1 == nil && err2 == nil && to > from {
				d := to - from
				unit := ""
				if strings.Contains(m[0], "%") {
					unit = "%"
				}
				return &d, unit
			}
		}
	}

	if m := deltaImprove.FindStringSubmatch(snippet); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v, strings.TrimSpace(m[2])
		}
	}

	return nil, ""
}

// assignTags maps keyword co-occurrence to the tag set
func assignTags(snippet string) []string {
	lower := strings.ToLower(snippet)

	var tags []string
	for _, tag := range []string{"human-level", "generalization", "self-improvement", "autonomy"} {
		for _, term := range tagTerms[tag] {
			if strings.Contains(lower, term) {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}

// buildStatement synthesizes a short restatement from the parsed parts
func buildStatement(benchmark string, value *float64, unit string, delta *float64, deltaUnit string) string {
	var parts []string

	if benchmark != "" && value != nil {
		if unit == "%" {
			parts = append(parts, fmt.Sprintf("%s score %.1f%%", benchmark, *value*100))
		} else {
			parts = append(parts, fmt.Sprintf("%s score %.1f", benchmark, *value))
		}
	} else if benchmark != "" {
		parts = append(parts, fmt.Sprintf("result reported on %s", benchmark))
	} else if value != nil {
		if unit == "%" {
			parts = append(parts, fmt.Sprintf("reported value %.1f%%", *value*100))
		} else {
			parts = append(parts, fmt.Sprintf("reported value %.1f", *value))
		}
	}

	if delta != nil {
		u := deltaUnit
		if u == "" {
			u = "points"
		}
		parts = append(parts, fmt.Sprintf("improvement of %.1f %s", *delta, u))
	}

	return strings.Join(parts, ", ")
}
