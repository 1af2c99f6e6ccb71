package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/pkozlov/agiwatch/internal/model"
	"github.com/pkozlov/agiwatch/internal/score"
)

// Revalidate re-runs the score combination for an already-analyzed document
// and records the outcome as a validation pass. The recommendation must be
// one of investigate, confirm or dismiss; anything else is rejected. The
// severity ratchet holds: a re-validation may raise the tier, never lower
// it, regardless of recommendation.
func (w *Worker) Revalidate(ctx context.Context, documentID, recommendation, notes string) (*model.AnalysisResult, error) {
	if !score.ValidRecommendation(recommendation) {
		return nil, fmt.Errorf("unknown recommendation %q (want investigate, confirm or dismiss)", recommendation)
	}

	prior, err := w.store.LatestAnalysis(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading prior analysis: %w", err)
	}
	if prior == nil {
		return nil, fmt.Errorf("no analysis exists for document %s", documentID)
	}

	doc, err := w.store.Document(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("no document %s", documentID)
	}

	// Cross-references that still do not resolve keep their penalty; an
	// unverifiable corroboration claim never inflates a re-validated score.
	sourceNames, err := w.store.SourceNames()
	if err != nil {
		return nil, fmt.Errorf("loading source names: %w", err)
	}
	penalty := 0.0
	if !resolveCrossReferences(prior.CrossReferences, sourceNames) {
		penalty = w.cfg.Analysis.CorroborationPenalty
	}

	combined := w.combiner.Combine(score.CombineInput{
		ModelScore:           prior.ModelScore,
		HeuristicScore:       prior.HeuristicScore,
		SecrecyBoost:         prior.SecrecyBoost,
		CorroborationPenalty: penalty,
	})

	updated := *prior
	updated.CorroborationPenalty = penalty
	updated.CombinedScore = combined.Combined
	updated.Severity = score.ComputeSeverity(combined.Combined, prior.Severity, doc.Evidence.Claims)
	updated.Breakdown = combined.Breakdown
	updated.LastValidation = &model.ValidationRecord{
		ValidatedAt:    time.Now(),
		Recommendation: recommendation,
		PriorScore:     prior.CombinedScore,
		NewScore:       combined.Combined,
		Notes:          notes,
	}
	updated.CreatedAt = time.Now()

	stored, err := w.store.InsertAnalysis(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("storing re-validation: %w", err)
	}
	return &stored, nil
}
