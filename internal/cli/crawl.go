package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkozlov/agiwatch/internal/acquire"
	"github.com/pkozlov/agiwatch/internal/extract"
	"github.com/pkozlov/agiwatch/internal/model"
	"github.com/pkozlov/agiwatch/internal/store"
	"github.com/pkozlov/agiwatch/internal/translate"
	"github.com/pkozlov/agiwatch/internal/worker"
)

var crawlTimeout time.Duration

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl [source ...]",
	Short: "Crawl configured sources and store new articles",
	Long: `Crawl runs the acquisition strategy chain over the configured sources
(or only the named ones), extracts evidence from each article at ingestion
time, and stores the documents for later analysis.

Per source the chain tries feeds, headless rendering, direct fetch, sitemap
discovery and finally web search, stopping at the first strategy that
yields articles. All requests pass the URL safety gate and a shared
per-domain rate limiter.

Example:
  agiwatch crawl
  agiwatch crawl example-lab other-lab --verbose`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().DurationVar(&crawlTimeout, "timeout", 20*time.Minute, "overall crawl timeout")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sources, err := selectSources(cfg, args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured; run 'agiwatch config init' and edit the sources list")
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), crawlTimeout)
	defer cancel()

	limiter := worker.NewLimiter(cfg.Crawl.RequestInterval, cfg.Crawl.Burst)
	browser := acquire.NewBrowser(cfg.Crawl.NavigationTimeout)
	defer browser.Close()

	chain := acquire.NewChain(cfg, limiter, browser)
	extractor := extract.NewExtractor()

	totalNew := 0
	for _, src := range sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		docs := chain.Acquire(ctx, src)
		if len(docs) == 0 {
			fmt.Fprintf(os.Stderr, "source %s: no articles acquired\n", src.Name)
			continue
		}

		for i := range docs {
			enrich(&docs[i], src, extractor, cfg.Analysis.TranslateThreshold)
		}

		saved, err := st.SaveDocuments(docs)
		if err != nil {
			return fmt.Errorf("saving documents for %s: %w", src.Name, err)
		}
		totalNew += saved

		if verbose {
			fmt.Fprintf(os.Stderr, "source %s: %d articles, %d new\n", src.Name, len(docs), saved)
		}
	}

	fmt.Printf("Crawled %d sources, %d new articles\n", len(sources), totalNew)
	return nil
}

// enrich populates the evidence bundle and detected language at ingestion
// time, so downstream scoring never re-reads the raw page.
func enrich(doc *model.Document, src model.Source, extractor *extract.Extractor, threshold float64) {
	doc.Evidence = extractor.Extract(doc.Content)

	if translate.NonEnglishRatio(doc.Content) >= threshold {
		if src.Language != "" {
			doc.Language = src.Language
		} else {
			doc.Language = "und"
		}
	} else {
		doc.Language = "en"
	}
}

// selectSources filters the configured sources down to the named ones;
// with no names, every configured source is crawled
func selectSources(cfg *model.Config, names []string) ([]model.Source, error) {
	if len(names) == 0 {
		return cfg.Sources, nil
	}

	byName := make(map[string]model.Source, len(cfg.Sources))
	for _, src := range cfg.Sources {
		byName[src.Name] = src
	}

	var out []model.Source
	for _, name := range names {
		src, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		out = append(out, src)
	}
	return out, nil
}
