package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkozlov/agiwatch/internal/pipeline"
)

var inspectTimeout time.Duration

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Fetch one URL and preview its extracted evidence",
	Long: `Inspect fetches a single article through the safety gate and rate
limiter, extracts snippets and claims, and shows the heuristic score and
any secrecy indicators. Nothing is stored and the model oracle is not
called.

Example:
  agiwatch inspect https://example.com/research/new-model`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().DurationVar(&inspectTimeout, "timeout", time.Minute, "fetch timeout")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	preview, err := pipeline.NewInspector(cfg).Inspect(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Title: %s\n", preview.Title)
	fmt.Printf("Heuristic score: %.3f\n\n", preview.HeuristicScore)

	fmt.Printf("Snippets (%d):\n", len(preview.Evidence.Snippets))
	for _, snippet := range preview.Evidence.Snippets {
		fmt.Printf("  [%.2f] %s\n", snippet.Relevance, snippet.Text)
	}

	fmt.Printf("\nClaims (%d):\n", len(preview.Evidence.Claims))
	for _, claim := range preview.Evidence.Claims {
		fmt.Printf("  - %s\n", claim.Statement)
	}

	if len(preview.Signals) > 0 {
		fmt.Println("\nSignals:")
		for _, sig := range preview.Signals {
			fmt.Printf("  %-24s %+.3f  %s\n", sig.Name, sig.Value, sig.Detail)
		}
	}

	if len(preview.SecrecyIndicators) > 0 {
		fmt.Println("\nSecrecy indicators:")
		for _, ind := range preview.SecrecyIndicators {
			fmt.Printf("  %s: %q\n", ind.Pattern, ind.Excerpt)
		}
	}
	return nil
}
