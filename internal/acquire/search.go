package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkozlov/agiwatch/internal/model"
)

// SearchClient queries an external web-search API (Brave-compatible shape)
// scoped to one source's host. It is the chain's last resort and only
// constructed when an API key is configured.
type SearchClient struct {
	endpoint   string
	apiKey     string
	count      int
	country    string
	httpClient *http.Client
}

// NewSearchClient creates a search fallback client
func NewSearchClient(cfg model.SearchConfig) *SearchClient {
	count := cfg.Count
	if count <= 0 {
		count = 5
	}
	return &SearchClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		count:      count,
		country:    cfg.Country,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type searchResponse struct {
	Web struct {
		Results []searchResult `json:"results"`
	} `json:"web"`
}

type searchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Search runs one host-scoped query and returns title/url/snippet triples
func (s *SearchClient) Search(ctx context.Context, query string) ([]searchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", s.count))
	params.Set("freshness", "pw") // past week keeps the fallback current
	if s.country != "" {
		params.Set("country", s.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parsed.Web.Results, nil
}

// runSearch queries the web-search API scoped to the source's host. Result
// snippets become thin documents; better content arrives when a later crawl
// reaches the article itself.
func (c *Chain) runSearch(ctx context.Context, src model.Source) ([]model.Document, error) {
	parsed, err := url.Parse(src.URL)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx, c.search.endpoint); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query := fmt.Sprintf("site:%s AI model capabilities", parsed.Host)
	results, err := c.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	for _, result := range results {
		if result.Title == "" || result.URL == "" || result.Description == "" {
			continue
		}
		// Search results point at arbitrary URLs; gate them like any other
		// transitively discovered link
		if v := c.gate.Check(result.URL); !v.Safe {
			c.logf("source %s: dropping unsafe search result %s: %s", src.Name, result.URL, v.Reason)
			continue
		}
		docs = append(docs, newDocument(src, result.URL, result.Title, result.Description, nil))
	}

	return docs, nil
}
