// Package analyze runs the batch scoring pipeline over unscored documents:
// triage, optional translation, secrecy detection, heuristic scoring, the
// model oracle, score combination and severity finalization, persisting
// progress after every batch so a crash loses at most one batch of work.
package analyze

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkozlov/agiwatch/internal/extract"
	"github.com/pkozlov/agiwatch/internal/llm"
	"github.com/pkozlov/agiwatch/internal/model"
	"github.com/pkozlov/agiwatch/internal/score"
	"github.com/pkozlov/agiwatch/internal/secrecy"
	"github.com/pkozlov/agiwatch/internal/translate"
)

// Store is the persistence surface the worker depends on. Per-document
// methods take a context so the step deadlines bound the database too, not
// just the oracle.
type Store interface {
	UnscoredDocuments(limit int) ([]model.Document, error)
	Document(ctx context.Context, id string) (*model.Document, error)
	FindExisting(ctx context.Context, documentID string) (bool, error)
	LatestAnalysis(ctx context.Context, documentID string) (*model.AnalysisResult, error)
	InsertAnalysis(ctx context.Context, res model.AnalysisResult) (model.AnalysisResult, error)
	SourceNames() ([]string, error)
	CreateJob(job model.AnalysisJob) error
	UpdateJobProgress(job model.AnalysisJob) error
	InsertTrendSnapshot(snap model.TrendSnapshot) error
	TrendAggregates(since time.Time) (model.TrendSnapshot, error)
}

// Worker drains the unscored-document queue one job at a time
type Worker struct {
	cfg         *model.Config
	store       Store
	oracle      llm.Provider // nil when the oracle is disabled
	translator  translate.Translator
	heuristic   *score.HeuristicScorer
	combiner    *score.Combiner
	claimParser *extract.ClaimParser
	verbose     bool

	// Buffered to one entry: at most one job queued behind the running one
	pending chan string
}

// NewWorker wires the scoring pipeline. oracle and translator may be nil.
func NewWorker(cfg *model.Config, st Store, oracle llm.Provider, translator translate.Translator) *Worker {
	return &Worker{
		cfg:         cfg,
		store:       st,
		oracle:      oracle,
		translator:  translator,
		heuristic:   score.NewHeuristicScorer(cfg.Analysis.HeuristicMax),
		combiner:    score.NewCombiner(cfg.Analysis.ModelWeight, cfg.Analysis.HeuristicWeight),
		claimParser: extract.NewClaimParser(),
		verbose:     cfg.Output.Verbose,
		pending:     make(chan string, 1),
	}
}

// Submit queues a new job and returns its ID. It fails when a job is already
// queued; the queue holds one entry and a single consumer drains it.
func (w *Worker) Submit() (string, error) {
	id := newJobID()
	now := time.Now()
	job := model.AnalysisJob{
		ID:        id,
		Status:    model.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.store.CreateJob(job); err != nil {
		return "", fmt.Errorf("creating job: %w", err)
	}

	select {
	case w.pending <- id:
		return id, nil
	default:
		job.Status = model.JobFailed
		job.Error = "another job is already queued"
		job.UpdatedAt = time.Now()
		w.store.UpdateJobProgress(job)
		return "", fmt.Errorf("another job is already queued")
	}
}

// Start consumes the queue until ctx is cancelled. Run it in exactly one
// goroutine.
func (w *Worker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-w.pending:
			w.RunJob(ctx, id)
		}
	}
}

// RunJob executes one queued job to completion. Per-document failures and
// batch timeouts are counted and skipped; only cancellation and failures
// loading the job's inputs are job-fatal.
func (w *Worker) RunJob(ctx context.Context, jobID string) {
	job := model.AnalysisJob{
		ID:        jobID,
		Status:    model.JobRunning,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	docs, err := w.store.UnscoredDocuments(w.cfg.Analysis.JobLimit)
	if err != nil {
		w.failJob(&job, fmt.Errorf("loading unscored documents: %w", err))
		return
	}

	sourceNames, err := w.store.SourceNames()
	if err != nil {
		w.failJob(&job, fmt.Errorf("loading source names: %w", err))
		return
	}

	job.TotalArticles = len(docs)
	if err := w.store.UpdateJobProgress(job); err != nil {
		w.logf("job %s: progress write failed: %v", jobID, err)
	}

	batchSize := w.cfg.Analysis.BatchSize
	if batchSize <= 0 {
		batchSize = 2
	}

	var totalStepMS int64
	batches := 0

	for start := 0; start < len(docs); start += batchSize {
		if ctx.Err() != nil {
			w.failJob(&job, ctx.Err())
			return
		}

		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		began := time.Now()
		w.runBatch(ctx, &job, docs[start:end], sourceNames)

		batches++
		totalStepMS += time.Since(began).Milliseconds()
		job.AverageStepMS = totalStepMS / int64(batches)

		remaining := (len(docs) - end + batchSize - 1) / batchSize
		job.EstimatedRemaining = time.Duration(job.AverageStepMS*int64(remaining)) * time.Millisecond
		job.UpdatedAt = time.Now()
		if err := w.store.UpdateJobProgress(job); err != nil {
			w.logf("job %s: progress write failed: %v", jobID, err)
		}
	}

	if ctx.Err() != nil {
		w.failJob(&job, ctx.Err())
		return
	}

	job.Status = model.JobCompleted
	job.CurrentArticle = ""
	job.EstimatedRemaining = 0
	job.UpdatedAt = time.Now()
	if err := w.store.UpdateJobProgress(job); err != nil {
		w.logf("job %s: completion write failed: %v", jobID, err)
	}

	w.snapshotTrends(time.Now())
}

// runBatch fans one slice of documents out concurrently under the batch
// deadline; the slice is at most one batch long, so the batch size bounds
// the fan-out. A deadline hit fails every unfinished document in the batch
// and the job moves on to the next batch.
func (w *Worker) runBatch(ctx context.Context, job *model.AnalysisJob, docs []model.Document, sourceNames []string) {
	batchCtx, cancel := context.WithTimeout(ctx, w.cfg.Analysis.BatchTimeout)
	defer cancel()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, doc := range docs {
		wg.Add(1)
		go func(doc model.Document) {
			defer wg.Done()

			var exists bool
			err := withTimeout(batchCtx, w.cfg.Analysis.StepTimeout, "existence check", func(stepCtx context.Context) error {
				var checkErr error
				exists, checkErr = w.store.FindExisting(stepCtx, doc.ID)
				return checkErr
			})
			if err == nil && !exists {
				err = w.analyzeDocument(batchCtx, doc, sourceNames)
			}

			mu.Lock()
			defer mu.Unlock()
			job.CurrentArticle = doc.Title
			job.ProcessedArticles++
			switch {
			case err == nil && exists:
				// Already scored on an earlier run; counted, not re-analyzed
			case err == nil:
				job.SuccessfulAnalyses++
			default:
				if batchCtx.Err() != nil && ctx.Err() == nil {
					err = &TimeoutError{Op: "batch", Limit: w.cfg.Analysis.BatchTimeout}
				}
				w.logf("document %s (%s): %v", doc.ID, doc.Title, err)
				job.FailedAnalyses++
			}
		}(doc)
	}

	wg.Wait()
}

// analyzeDocument runs the full scoring pipeline for one document
func (w *Worker) analyzeDocument(ctx context.Context, doc model.Document, sourceNames []string) error {
	prior := model.SeverityNone
	if existing, err := w.store.LatestAnalysis(ctx, doc.ID); err == nil && existing != nil {
		prior = existing.Severity
	}

	if reason := triage(doc); reason != "" {
		return w.insertWithDeadline(ctx, filteredResult(doc, prior, reason))
	}

	title, snippets, claims, err := w.translateEvidence(ctx, doc)
	if err != nil {
		w.logf("document %s: translation failed, using originals: %v", doc.ID, err)
	}

	indicators := secrecy.Detect(doc.Content, doc.Source, time.Now())
	boost := secrecy.Boost(indicators)

	heuristicScore, signals := w.heuristic.Score(claims, len(snippets))

	oracleResp := llm.DefaultResponse()
	if w.oracle != nil {
		err := withTimeout(ctx, w.cfg.Analysis.StepTimeout, "oracle classify", func(stepCtx context.Context) error {
			resp, err := w.oracle.Classify(stepCtx, llm.ClassifyRequest{
				DocumentTitle:    title,
				EvidenceSnippets: snippets,
				RawContent:       doc.Content,
			})
			if err != nil {
				return err
			}
			oracleResp = resp
			return nil
		})
		if err != nil {
			return err
		}
	}

	penalty := 0.0
	if !resolveCrossReferences(oracleResp.CrossReferences, sourceNames) {
		penalty = w.cfg.Analysis.CorroborationPenalty
	}

	combined := w.combiner.Combine(score.CombineInput{
		ModelScore:           oracleResp.Score,
		HeuristicScore:       heuristicScore,
		SecrecyBoost:         boost,
		CorroborationPenalty: penalty,
		Signals:              signals,
	})

	allIndicators := oracleResp.Indicators
	for _, ind := range indicators {
		allIndicators = append(allIndicators, "secrecy: "+ind.Pattern)
	}

	result := model.AnalysisResult{
		DocumentID:           doc.ID,
		ModelScore:           oracleResp.Score,
		HeuristicScore:       heuristicScore,
		CorroborationPenalty: penalty,
		SecrecyBoost:         boost,
		CombinedScore:        combined.Combined,
		Severity:             score.ComputeSeverity(combined.Combined, prior, claims),
		Confidence:           oracleResp.Confidence,
		Indicators:           allIndicators,
		CrossReferences:      oracleResp.CrossReferences,
		Breakdown:            combined.Breakdown,
	}

	return w.insertWithDeadline(ctx, result)
}

// insertWithDeadline writes one analysis under the per-operation deadline
func (w *Worker) insertWithDeadline(ctx context.Context, res model.AnalysisResult) error {
	return withTimeout(ctx, w.cfg.Analysis.StepTimeout, "analysis write", func(stepCtx context.Context) error {
		_, err := w.store.InsertAnalysis(stepCtx, res)
		return err
	})
}

// translateEvidence re-parses claims from translated snippets when the
// document crosses the non-English threshold. On any translation problem the
// original title, snippets and claims are used.
func (w *Worker) translateEvidence(ctx context.Context, doc model.Document) (string, []string, []model.Claim, error) {
	snippets := make([]string, len(doc.Evidence.Snippets))
	for i, s := range doc.Evidence.Snippets {
		snippets[i] = s.Text
	}

	res, err := translate.IfNonEnglish(ctx, w.translator, doc.Title, snippets, w.cfg.Analysis.TranslateThreshold)
	if err != nil || !res.Translated {
		return doc.Title, snippets, doc.Evidence.Claims, err
	}

	var claims []model.Claim
	for _, text := range res.Snippets {
		if claim, ok := w.claimParser.Parse(text); ok {
			claims = append(claims, claim)
		}
	}
	return res.Title, res.Snippets, claims, nil
}

func (w *Worker) failJob(job *model.AnalysisJob, cause error) {
	job.Status = model.JobFailed
	job.Error = cause.Error()
	job.UpdatedAt = time.Now()
	if err := w.store.UpdateJobProgress(*job); err != nil {
		w.logf("job %s: failure write failed: %v", job.ID, err)
	}
}

func (w *Worker) logf(format string, args ...any) {
	if w.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

func newJobID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return "job-" + hex.EncodeToString(buf)
}
