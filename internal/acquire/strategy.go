package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pkozlov/agiwatch/internal/cache"
	"github.com/pkozlov/agiwatch/internal/model"
	"github.com/pkozlov/agiwatch/internal/safety"
	"github.com/pkozlov/agiwatch/internal/util"
	"github.com/pkozlov/agiwatch/internal/worker"
)

// Kind identifies one acquisition strategy in the chain
type Kind int

const (
	KindFeed Kind = iota
	KindPriorityRender
	KindBlockedRender
	KindDirectFetch
	KindFallbackRender
	KindSitemap
	KindSearch
)

func (k Kind) String() string {
	switch k {
	case KindFeed:
		return "feed"
	case KindPriorityRender:
		return "priority-render"
	case KindBlockedRender:
		return "blocked-render"
	case KindDirectFetch:
		return "direct-fetch"
	case KindFallbackRender:
		return "fallback-render"
	case KindSitemap:
		return "sitemap"
	case KindSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Chain runs the ordered acquisition strategies for one source,
// short-circuiting on the first non-empty result. Strategy errors are
// logged and treated as empty results; they never propagate to the caller.
type Chain struct {
	cfg        *model.Config
	gate       *safety.Gate
	limiter    *worker.Limiter
	browser    *Browser
	robots     *util.RobotsChecker
	search     *SearchClient // nil when no API key configured
	httpClient *http.Client
	feedParser *gofeed.Parser
	pages      *cache.PageCache // URL -> fetched body, bounded by TTL
	verbose    bool

	// runStrategy dispatches one strategy; injectable for tests
	runStrategy func(ctx context.Context, kind Kind, src model.Source) ([]model.Document, error)
}

// NewChain wires a strategy chain. The limiter and browser are shared,
// injected resources: every chain built from the same instances competes
// for the same token bucket and browser process.
func NewChain(cfg *model.Config, limiter *worker.Limiter, browser *Browser) *Chain {
	c := &Chain{
		cfg:     cfg,
		gate:    safety.NewGate(),
		limiter: limiter,
		browser: browser,
		robots:  util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: &http.Transport{Proxy: util.ProxyFunc(cfg.HTTP.Proxy)},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		feedParser: gofeed.NewParser(),
		pages:      cache.NewPageCache(cfg.Crawl.CacheTTL, cfg.Crawl.CacheDir),
		verbose:    cfg.Output.Verbose,
	}
	if cfg.Search.APIKey != "" {
		c.search = NewSearchClient(cfg.Search)
	}
	c.runStrategy = c.run
	return c
}

// strategiesFor returns the ordered strategy list for one source
func (c *Chain) strategiesFor(src model.Source) []Kind {
	var kinds []Kind

	kinds = append(kinds, KindFeed)
	if src.RenderFirst {
		kinds = append(kinds, KindPriorityRender)
	}
	if src.Blocked {
		kinds = append(kinds, KindBlockedRender)
	}
	kinds = append(kinds, KindDirectFetch)
	if !src.Blocked {
		kinds = append(kinds, KindFallbackRender)
	}
	if src.AutoDiscover {
		kinds = append(kinds, KindSitemap)
	}
	if c.search != nil {
		kinds = append(kinds, KindSearch)
	}

	return kinds
}

// Acquire produces documents for one source, or an empty slice when every
// strategy fails. An all-strategies-failed source is a soft condition, not
// an error.
func (c *Chain) Acquire(ctx context.Context, src model.Source) []model.Document {
	for _, kind := range c.strategiesFor(src) {
		docs, err := c.runStrategy(ctx, kind, src)
		if err != nil {
			c.logf("source %s: strategy %s failed: %v", src.Name, kind, err)
			continue
		}
		if len(docs) > 0 {
			c.logf("source %s: strategy %s yielded %d documents", src.Name, kind, len(docs))
			return docs
		}
	}

	c.logf("source %s: no strategy yielded documents", src.Name)
	return nil
}

// run dispatches one strategy
func (c *Chain) run(ctx context.Context, kind Kind, src model.Source) ([]model.Document, error) {
	switch kind {
	case KindFeed:
		return c.runFeed(ctx, src)
	case KindPriorityRender, KindFallbackRender:
		return c.runRender(ctx, src, 1)
	case KindBlockedRender:
		return c.runRender(ctx, src, c.cfg.Crawl.RenderRetries)
	case KindDirectFetch:
		return c.runDirect(ctx, src)
	case KindSitemap:
		return c.runSitemap(ctx, src)
	case KindSearch:
		return c.runSearch(ctx, src)
	default:
		return nil, fmt.Errorf("unknown strategy kind %d", kind)
	}
}

// FetchPage fetches one URL through the full gate/robots/limiter path and
// returns its visible text with the page title. Used by single-URL
// inspection outside the per-source strategy loop.
func (c *Chain) FetchPage(ctx context.Context, rawURL string) (title, text string, err error) {
	body, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", "", err
	}

	root, err := parseHTML(body)
	if err != nil {
		return "", "", fmt.Errorf("parse page: %w", err)
	}
	return documentTitle(root), pageText(body), nil
}

// fetch issues one rate-limited, safety-gated HTTP GET with a rotated
// user agent and realistic headers. Every outbound request in the chain,
// including transitive ones, goes through here or through the browser.
func (c *Chain) fetch(ctx context.Context, rawURL string) (string, error) {
	if body, found := c.pages.Get(rawURL); found {
		return body, nil
	}

	if v := c.gate.Check(rawURL); !v.Safe {
		return "", fmt.Errorf("blocked by safety gate: %s", v.Reason)
	}

	if c.cfg.Crawl.RespectRobots {
		allowed, crawlDelay := c.robots.Check(ctx, rawURL)
		if !allowed {
			return "", fmt.Errorf("disallowed by robots.txt")
		}
		c.applyCrawlDelay(rawURL, crawlDelay)
	}

	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", util.RandomUserAgent())
	for key, val := range util.BrowserHeaders() {
		req.Header.Set(key, val)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.HTTP.MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	page := string(body)
	c.pages.Put(rawURL, page)
	return page, nil
}

// applyCrawlDelay slows the domain's token bucket down when robots.txt
// declares a Crawl-delay longer than the configured interval. The delay is
// capped so a hostile robots.txt cannot stall the crawl.
func (c *Chain) applyCrawlDelay(rawURL string, delay time.Duration) {
	const maxCrawlDelay = 30 * time.Second

	if delay <= c.cfg.Crawl.RequestInterval {
		return
	}
	if delay > maxCrawlDelay {
		delay = maxCrawlDelay
	}
	if parsed, err := url.Parse(rawURL); err == nil {
		c.limiter.SetDomainRate(parsed.Host, delay, 1)
	}
}

// render issues one rate-limited, safety-gated headless navigation with a
// randomized humanlike pause on top of the domain bucket
func (c *Chain) render(ctx context.Context, rawURL string) (string, string, error) {
	if v := c.gate.Check(rawURL); !v.Safe {
		return "", "", fmt.Errorf("blocked by safety gate: %s", v.Reason)
	}
	if err := c.limiter.WaitWithDelay(ctx, rawURL, renderJitter()); err != nil {
		return "", "", fmt.Errorf("rate limit: %w", err)
	}
	return c.browser.Render(ctx, rawURL)
}

// newDocument builds a document with identity and content hash filled in
func newDocument(src model.Source, url, title, content string, published *time.Time) model.Document {
	return model.Document{
		ID:          model.DocumentID(src.Name, url),
		Source:      src.Name,
		URL:         url,
		Title:       title,
		Content:     content,
		ContentHash: model.HashContent(content),
		Language:    src.Language,
		PublishedAt: published,
		FetchedAt:   time.Now().UTC(),
	}
}

func (c *Chain) logf(format string, args ...interface{}) {
	if c.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
