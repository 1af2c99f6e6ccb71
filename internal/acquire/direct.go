package acquire

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkozlov/agiwatch/internal/model"
)

// runDirect fetches the source's listing page over plain HTTP. Sources with
// a configured selector triple get CSS-selector extraction; auto-discover
// sources fall back to the heuristic DOM scan.
func (c *Chain) runDirect(ctx context.Context, src model.Source) ([]model.Document, error) {
	body, err := c.fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	if src.Selectors.HasSelectors() {
		return c.selectorDocuments(src, body)
	}
	if src.AutoDiscover {
		return c.scanDocuments(src, body)
	}
	return nil, nil
}

// selectorDocuments extracts the title/content/link triple per configured
// item selector
func (c *Chain) selectorDocuments(src model.Source, body string) ([]model.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source URL: %w", err)
	}

	var docs []model.Document
	seen := make(map[string]bool)

	doc.Find(src.Selectors.Item).Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(src.Selectors.Title).First().Text())
		if title == "" {
			return
		}

		content := title
		if src.Selectors.Content != "" {
			if text := strings.TrimSpace(item.Find(src.Selectors.Content).First().Text()); text != "" {
				content = text
			}
		}

		link := ""
		linkSel := src.Selectors.Link
		if linkSel == "" {
			linkSel = "a"
		}
		if href, ok := item.Find(linkSel).First().Attr("href"); ok {
			link = resolveLink(base, href)
		}
		if link == "" || seen[link] {
			return
		}

		// Transitively discovered links go back through the gate
		if v := c.gate.Check(link); !v.Safe {
			c.logf("source %s: dropping unsafe link %s: %s", src.Name, link, v.Reason)
			return
		}

		seen[link] = true
		docs = append(docs, newDocument(src, link, title, content, nil))
	})

	return docs, nil
}

// resolveLink resolves a possibly relative href against the listing page
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
