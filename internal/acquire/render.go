package acquire

import (
	"context"
	"strings"
	"time"

	"github.com/pkozlov/agiwatch/internal/model"
	"golang.org/x/net/html"
)

const renderBackoffStep = 2 * time.Second

// runRender acquires the source through the headless browser, retrying up
// to attempts times with linear backoff. Blocked sources that reject plain
// HTTP clients get the full retry budget; priority and fallback renders get
// a single attempt.
func (c *Chain) runRender(ctx context.Context, src model.Source, attempts int) ([]model.Document, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * renderBackoffStep
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		title, rendered, err := c.render(ctx, src.URL)
		if err != nil {
			lastErr = err
			continue
		}

		docs, err := c.renderedDocuments(src, title, rendered)
		if err != nil {
			lastErr = err
			continue
		}
		if len(docs) > 0 {
			return docs, nil
		}
	}

	return nil, lastErr
}

// renderedDocuments extracts articles from a rendered page: configured
// selectors first, the heuristic DOM scan otherwise. A page that scans to
// nothing but carries substantial text becomes a single document - the SPA
// itself may be the article.
func (c *Chain) renderedDocuments(src model.Source, pageTitle, rendered string) ([]model.Document, error) {
	if src.Selectors.HasSelectors() {
		docs, err := c.selectorDocuments(src, rendered)
		if err == nil && len(docs) > 0 {
			return docs, nil
		}
	}

	docs, err := c.scanDocuments(src, rendered)
	if err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		return docs, nil
	}

	text := pageText(rendered)
	if len(text) >= minBlockTextLength && strings.TrimSpace(pageTitle) != "" {
		return []model.Document{newDocument(src, src.URL, strings.TrimSpace(pageTitle), text, nil)}, nil
	}

	return nil, nil
}

// parseHTML wraps the parser so strategy files share one entry point
func parseHTML(body string) (*html.Node, error) {
	return html.Parse(strings.NewReader(body))
}
