// Package pipeline provides single-URL inspection: one article fetched,
// extracted and heuristically scored without touching the store or the
// oracle. It exists for debugging sources and extraction rules before
// committing them to the crawl configuration.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkozlov/agiwatch/internal/acquire"
	"github.com/pkozlov/agiwatch/internal/extract"
	"github.com/pkozlov/agiwatch/internal/model"
	"github.com/pkozlov/agiwatch/internal/score"
	"github.com/pkozlov/agiwatch/internal/secrecy"
	"github.com/pkozlov/agiwatch/internal/worker"
)

// Inspector runs the extraction pipeline for one URL
type Inspector struct {
	chain     *acquire.Chain
	extractor *extract.Extractor
	heuristic *score.HeuristicScorer
}

// NewInspector wires an inspector from configuration. The browser is not
// used: inspection always takes the plain HTTP path.
func NewInspector(cfg *model.Config) *Inspector {
	limiter := worker.NewLimiter(cfg.Crawl.RequestInterval, cfg.Crawl.Burst)
	return &Inspector{
		chain:     acquire.NewChain(cfg, limiter, nil),
		extractor: extract.NewExtractor(),
		heuristic: score.NewHeuristicScorer(cfg.Analysis.HeuristicMax),
	}
}

// Preview is the inspection result for one URL
type Preview struct {
	URL               string
	Title             string
	Evidence          model.EvidenceBundle
	HeuristicScore    float64
	Signals           []model.Signal
	SecrecyIndicators []secrecy.Indicator
}

// Inspect fetches one URL through the safety gate and rate limiter and
// runs extraction, heuristic scoring and secrecy detection on it
func (i *Inspector) Inspect(ctx context.Context, url string) (*Preview, error) {
	title, text, err := i.chain.FetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if text == "" {
		return nil, fmt.Errorf("no visible text at %s", url)
	}

	return i.buildPreview(url, title, text), nil
}

func (i *Inspector) buildPreview(url, title, content string) *Preview {
	evidence := i.extractor.Extract(content)
	heuristicScore, signals := i.heuristic.Score(evidence.Claims, len(evidence.Snippets))

	return &Preview{
		URL:               url,
		Title:             title,
		Evidence:          evidence,
		HeuristicScore:    heuristicScore,
		Signals:           signals,
		SecrecyIndicators: secrecy.Detect(content, url, time.Now()),
	}
}
