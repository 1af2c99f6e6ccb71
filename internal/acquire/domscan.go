package acquire

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkozlov/agiwatch/internal/model"
	"golang.org/x/net/html"
)

const (
	minBlockTextLength = 80
	minScanTitleLength = 10
)

var blockElements = map[string]bool{
	"article": true, "section": true, "div": true, "li": true,
}

// Date patterns recognized inside scanned blocks. CJK sources write dates
// as 2025年1月15日.
var (
	gregorianDate = regexp.MustCompile(`\b(20\d{2}|19\d{2})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	cjkDate       = regexp.MustCompile(`(20\d{2}|19\d{2})年(\d{1,2})月(\d{1,2})日`)
)

// scanDocuments is the heuristic DOM scan used for auto-discover sources
// and as an SPA fallback: block-level elements with enough text, a
// descendant link and a plausible title become candidate articles.
func (c *Chain) scanDocuments(src model.Source, body string) ([]model.Document, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, err
	}

	limit := c.cfg.Crawl.MaxScanArticles
	if limit <= 0 {
		limit = 15
	}

	var docs []model.Document
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(docs) >= limit {
			return
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			if doc, ok := c.scanBlock(src, base, n, seen); ok {
				docs = append(docs, doc)
				// Do not descend into a block already claimed as an article
				return
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return docs, nil
}

// scanBlock evaluates one block element as an article candidate
func (c *Chain) scanBlock(src model.Source, base *url.URL, n *html.Node, seen map[string]bool) (model.Document, bool) {
	text := collapseWhitespace(visibleText(n))
	if len(text) < minBlockTextLength {
		return model.Document{}, false
	}

	link := firstLink(n, base)
	if link == "" || seen[link] {
		return model.Document{}, false
	}

	title := blockTitle(n)
	if len(title) < minScanTitleLength {
		return model.Document{}, false
	}

	if v := c.gate.Check(link); !v.Safe {
		return model.Document{}, false
	}

	seen[link] = true
	return newDocument(src, link, title, text, parseBlockDate(text)), true
}

// blockTitle prefers a heading descendant, falling back to anchor text
func blockTitle(n *html.Node) string {
	if heading := findFirst(n, map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true}); heading != nil {
		return collapseWhitespace(visibleText(heading))
	}
	if anchor := findFirst(n, map[string]bool{"a": true}); anchor != nil {
		return collapseWhitespace(visibleText(anchor))
	}
	return ""
}

// firstLink returns the first resolvable descendant anchor href
func firstLink(n *html.Node, base *url.URL) string {
	anchor := findFirst(n, map[string]bool{"a": true})
	if anchor == nil {
		return ""
	}
	for _, attr := range anchor.Attr {
		if attr.Key == "href" {
			return resolveLink(base, attr.Val)
		}
	}
	return ""
}

// parseBlockDate extracts a publish date from the block text, supporting
// both Gregorian and CJK forms
func parseBlockDate(text string) *time.Time {
	for _, pattern := range []*regexp.Regexp{gregorianDate, cjkDate} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			layout := "2006-1-2"
			normalized := m[1] + "-" + m[2] + "-" + m[3]
			if t, err := time.Parse(layout, normalized); err == nil {
				return &t
			}
		}
	}
	return nil
}

// findFirst returns the first descendant element whose tag is in the set
func findFirst(n *html.Node, tags map[string]bool) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && tags[child.Data] {
			return child
		}
		if found := findFirst(child, tags); found != nil {
			return found
		}
	}
	return nil
}

// documentTitle returns the <title> text of a parsed page
func documentTitle(root *html.Node) string {
	node := findFirst(root, map[string]bool{"title": true})
	if node == nil {
		return ""
	}
	return collapseWhitespace(visibleText(node))
}

// visibleText extracts text nodes, skipping script and style subtrees
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return buf.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
