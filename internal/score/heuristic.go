package score

import (
	"fmt"

	"github.com/pkozlov/agiwatch/internal/extract"
	"github.com/pkozlov/agiwatch/internal/model"
)

// DefaultHeuristicMax caps the total deterministic contribution
const DefaultHeuristicMax = 0.4

// Per-rule contributions. Thresholds are intentionally conservative:
// this scorer adds corroborating signal, it does not replace the oracle.
const (
	perBenchmarkClaim   = 0.03
	generalReasoningHi  = 0.15 // general-reasoning benchmark, value >= 25 points
	generalReasoningLo  = 0.10 // general-reasoning benchmark, value >= 10 points
	largeDelta          = 0.10 // delta >= 10 units
	smallDelta          = 0.05 // delta >= 5 units
	humanLevelTag       = 0.06
	generalizationTag   = 0.04
	multiSnippetSupport = 0.03 // >= 3 distinct evidence snippets
)

// HeuristicScorer computes a bounded, deterministic score contribution from
// extracted claims, independent of the model oracle
type HeuristicScorer struct {
	max float64
}

// NewHeuristicScorer creates a scorer with the given cap; non-positive
// values fall back to the default
func NewHeuristicScorer(max float64) *HeuristicScorer {
	if max <= 0 {
		max = DefaultHeuristicMax
	}
	return &HeuristicScorer{max: max}
}

// Score applies the additive rules and clamps the total to [0, max].
// Every fired rule is reported as a named signal for auditability.
func (h *HeuristicScorer) Score(claims []model.Claim, snippetCount int) (float64, []model.Signal) {
	var total float64
	var signals []model.Signal

	add := func(name string, value float64, detail string) {
		total += value
		signals = append(signals, model.Signal{Name: name, Value: value, Detail: detail})
	}

	benchmarkClaims := 0
	for _, claim := range claims {
		if claim.Benchmark != "" {
			benchmarkClaims++
		}
	}
	if benchmarkClaims > 0 {
		add("benchmark_claims", float64(benchmarkClaims)*perBenchmarkClaim,
			fmt.Sprintf("%d benchmark claims", benchmarkClaims))
	}

	for _, claim := range claims {
		if claim.Benchmark != "" && extract.IsGeneralReasoning(claim.Benchmark) && claim.Value != nil {
			points := claimPoints(claim)
			switch {
			case points >= 25:
				add("general_reasoning_high", generalReasoningHi,
					fmt.Sprintf("%s at %.1f points", claim.Benchmark, points))
			case points >= 10:
				add("general_reasoning", generalReasoningLo,
					fmt.Sprintf("%s at %.1f points", claim.Benchmark, points))
			}
		}

		if claim.Delta != nil {
			switch {
			case *claim.Delta >= 10:
				add("large_delta", largeDelta, fmt.Sprintf("delta %.1f", *claim.Delta))
			case *claim.Delta >= 5:
				add("delta", smallDelta, fmt.Sprintf("delta %.1f", *claim.Delta))
			}
		}

		if claim.HasTag("human-level") {
			add("human_level_claim", humanLevelTag, "")
		}
		if claim.HasTag("generalization") {
			add("generalization_claim", generalizationTag, "")
		}
	}

	if snippetCount >= 3 {
		add("snippet_support", multiSnippetSupport,
			fmt.Sprintf("%d evidence snippets", snippetCount))
	}

	if total > h.max {
		total = h.max
	}
	if total < 0 {
		total = 0
	}

	return total, signals
}

// claimPoints returns the claim value on the percentage-point scale the
// rule thresholds are written in; percent values are stored normalized
func claimPoints(claim model.Claim) float64 {
	if claim.Value == nil {
		return 0
	}
	if claim.Unit == "%" {
		return *claim.Value * 100
	}
	return *claim.Value
}
