package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkozlov/agiwatch/internal/analyze"
	"github.com/pkozlov/agiwatch/internal/llm"
	"github.com/pkozlov/agiwatch/internal/model"
	"github.com/pkozlov/agiwatch/internal/store"
	"github.com/pkozlov/agiwatch/internal/translate"
)

var (
	analyzeLimit     int
	analyzeBatchSize int

	revalidateRecommendation string
	revalidateNotes          string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score unscored articles",
	Long: `Analyze drains the queue of crawled but unscored articles. Each article
passes triage, optional translation, secrecy detection, heuristic scoring
and the model oracle; the combined score is mapped to a severity tier that
never decreases across re-runs.

Progress is persisted after every batch, so an interrupted job loses at
most one batch of work. Re-running over the same articles is a no-op.

Example:
  agiwatch analyze
  agiwatch analyze --limit 20 --batch-size 4`,
	RunE: runAnalyze,
}

// revalidateCmd represents the revalidate command
var revalidateCmd = &cobra.Command{
	Use:   "revalidate <document-id>",
	Short: "Re-run score combination for one analyzed article",
	Long: `Revalidate recomputes the combined score for an already-analyzed article
and records the pass with a recommendation (investigate, confirm or
dismiss). The severity ratchet holds: re-validation may raise the tier,
never lower it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRevalidate,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "max articles to analyze (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeBatchSize, "batch-size", 0, "articles per batch (default from config)")

	rootCmd.AddCommand(revalidateCmd)
	revalidateCmd.Flags().StringVar(&revalidateRecommendation, "recommendation", "investigate", "investigate, confirm or dismiss")
	revalidateCmd.Flags().StringVar(&revalidateNotes, "notes", "", "free-text notes recorded with the pass")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeLimit > 0 {
		cfg.Analysis.JobLimit = analyzeLimit
	}
	if analyzeBatchSize > 0 {
		cfg.Analysis.BatchSize = analyzeBatchSize
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := buildWorker(cfg, st)
	if err != nil {
		return err
	}

	jobID, err := w.Submit()
	if err != nil {
		return err
	}

	w.RunJob(context.Background(), jobID)

	job, err := st.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("reading job result: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s vanished", jobID)
	}

	fmt.Printf("Job %s: %s\n", job.ID, job.Status)
	fmt.Printf("  articles:   %d\n", job.TotalArticles)
	fmt.Printf("  successful: %d\n", job.SuccessfulAnalyses)
	fmt.Printf("  failed:     %d\n", job.FailedAnalyses)
	if job.AverageStepMS > 0 {
		fmt.Printf("  avg batch:  %s\n", time.Duration(job.AverageStepMS)*time.Millisecond)
	}
	if job.Error != "" {
		return fmt.Errorf("job failed: %s", job.Error)
	}
	return nil
}

func runRevalidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := buildWorker(cfg, st)
	if err != nil {
		return err
	}

	res, err := w.Revalidate(cmd.Context(), args[0], revalidateRecommendation, revalidateNotes)
	if err != nil {
		return err
	}

	fmt.Printf("Document %s re-validated (%s)\n", res.DocumentID, revalidateRecommendation)
	fmt.Printf("  score:    %.3f -> %.3f\n", res.LastValidation.PriorScore, res.CombinedScore)
	fmt.Printf("  severity: %s\n", res.Severity)
	return nil
}

// buildWorker wires the oracle and translator from config; both stay nil
// when no provider is configured
func buildWorker(cfg *model.Config, st *store.Store) (*analyze.Worker, error) {
	oracle, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("configuring model oracle: %w", err)
	}
	if oracle == nil && verbose {
		fmt.Fprintln(os.Stderr, "No LLM provider configured; scoring on heuristics alone")
	}

	var translator translate.Translator
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey != "" {
		tr, err := translate.NewOpenAITranslator(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
		if err == nil {
			translator = tr
		}
	}

	return analyze.NewWorker(cfg, st, oracle, translator), nil
}
