package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkozlov/agiwatch/internal/store"
)

var (
	reportLimit int
	reportJSON  bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the highest-scoring analyzed articles",
	Long: `Report lists analyzed articles ordered by combined score, with severity,
confidence and the named signals behind each score.

Example:
  agiwatch report
  agiwatch report --limit 25 --json`,
	RunE: runReport,
}

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Sources) == 0 {
			fmt.Println("No sources configured")
			return nil
		}

		for _, src := range cfg.Sources {
			var traits []string
			if len(src.FeedURLs) > 0 {
				traits = append(traits, fmt.Sprintf("%d feeds", len(src.FeedURLs)))
			}
			if src.Selectors.HasSelectors() {
				traits = append(traits, "selectors")
			}
			if src.RenderFirst {
				traits = append(traits, "render-first")
			}
			if src.Blocked {
				traits = append(traits, "blocked")
			}
			if src.AutoDiscover {
				traits = append(traits, "auto-discover")
			}
			detail := ""
			if len(traits) > 0 {
				detail = " (" + strings.Join(traits, ", ") + ")"
			}
			fmt.Printf("%-24s %s%s\n", src.Name, src.URL, detail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "number of articles to show")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "emit raw JSON")

	rootCmd.AddCommand(sourcesCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	results, titles, err := st.TopAnalyses(reportLimit)
	if err != nil {
		return fmt.Errorf("loading analyses: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No analyzed articles yet; run 'agiwatch crawl' then 'agiwatch analyze'")
		return nil
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for i, res := range results {
		fmt.Printf("%2d. [%s] %.3f  %s\n", i+1, strings.ToUpper(res.Severity.String()), res.CombinedScore, titles[i])
		fmt.Printf("    model %.3f  heuristic %.3f  confidence %.2f", res.ModelScore, res.HeuristicScore, res.Confidence)
		if res.SecrecyBoost > 0 {
			fmt.Printf("  secrecy +%.2f", res.SecrecyBoost)
		}
		if res.CorroborationPenalty > 0 {
			fmt.Printf("  corroboration -%.2f", res.CorroborationPenalty)
		}
		fmt.Println()

		if res.Breakdown.Filtered {
			fmt.Printf("    filtered: %s\n", res.Breakdown.FilterReason)
			continue
		}
		for _, sig := range res.Breakdown.Signals {
			if sig.Detail != "" {
				fmt.Printf("    %-24s %+.3f  %s\n", sig.Name, sig.Value, sig.Detail)
			} else {
				fmt.Printf("    %-24s %+.3f\n", sig.Name, sig.Value)
			}
		}
	}
	return nil
}
