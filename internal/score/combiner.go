package score

import (
	"fmt"

	"github.com/pkozlov/agiwatch/internal/model"
)

// Default combination weights
const (
	DefaultModelWeight     = 0.85
	DefaultHeuristicWeight = 0.15
)

// Combiner merges the oracle score, the heuristic score, the secrecy boost
// and any corroboration penalty into one bounded final score
type Combiner struct {
	modelWeight     float64
	heuristicWeight float64
}

// NewCombiner creates a combiner; non-positive weights fall back to defaults
func NewCombiner(modelWeight, heuristicWeight float64) *Combiner {
	if modelWeight <= 0 {
		modelWeight = DefaultModelWeight
	}
	if heuristicWeight <= 0 {
		heuristicWeight = DefaultHeuristicWeight
	}
	return &Combiner{modelWeight: modelWeight, heuristicWeight: heuristicWeight}
}

// CombineInput carries every signal feeding the final score
type CombineInput struct {
	ModelScore           float64
	HeuristicScore       float64
	SecrecyBoost         float64
	CorroborationPenalty float64
	Signals              []model.Signal
}

// CombineResult is the final score with its full breakdown
type CombineResult struct {
	Combined  float64
	Breakdown model.Breakdown
}

// Combine computes:
//
//	weighted  = model*Wm + heuristic*Wh
//	combined  = clamp(max(model - penalty, weighted - penalty) + boost, 0, 1)
//
// The corroboration penalty is subtracted from the prior score before the max
// is taken, so a corroboration failure cannot be masked by the heuristic
// boost. The heuristic never pulls the score below what the oracle alone
// asserted - it adds confidence, it does not subtract confidence the oracle
// assigned.
func (c *Combiner) Combine(in CombineInput) CombineResult {
	weighted := in.ModelScore*c.modelWeight + in.HeuristicScore*c.heuristicWeight

	prior := in.ModelScore - in.CorroborationPenalty
	combined := weighted - in.CorroborationPenalty
	if prior > combined {
		combined = prior
	}

	combined += in.SecrecyBoost
	combined = clamp01(combined)

	signals := append([]model.Signal{}, in.Signals...)
	signals = append(signals, model.Signal{
		Name:   "weighted_combination",
		Value:  weighted,
		Detail: fmt.Sprintf("model %.3f * %.2f + heuristic %.3f * %.2f", in.ModelScore, c.modelWeight, in.HeuristicScore, c.heuristicWeight),
	})
	if in.SecrecyBoost > 0 {
		signals = append(signals, model.Signal{Name: "secrecy_boost", Value: in.SecrecyBoost})
	}
	if in.CorroborationPenalty > 0 {
		signals = append(signals, model.Signal{
			Name:   "corroboration_penalty",
			Value:  -in.CorroborationPenalty,
			Detail: "claimed cross-references did not resolve against the corpus",
		})
	}

	return CombineResult{
		Combined: combined,
		Breakdown: model.Breakdown{
			ModelWeight:     c.modelWeight,
			HeuristicWeight: c.heuristicWeight,
			Signals:         signals,
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
