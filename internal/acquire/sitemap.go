package acquire

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/pkozlov/agiwatch/internal/model"
)

const maxChildSitemaps = 2

// Path keywords marking a sitemap URL as topical
var topicalPathKeywords = []string{
	"research", "paper", "news", "blog", "post", "article", "publication", "ai",
}

type sitemapIndex struct {
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	URLs []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// runSitemap discovers article URLs via /sitemap.xml or /sitemap_index.xml,
// resolving up to two child sitemaps, filtering by same-host topical paths
// and synthesizing titles from URL slugs. Used for auto-discover sources
// only.
func (c *Chain) runSitemap(ctx context.Context, src model.Source) ([]model.Document, error) {
	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, err
	}

	root := base.Scheme + "://" + base.Host

	var lastErr error
	for _, path := range []string{"/sitemap.xml", "/sitemap_index.xml"} {
		urls, err := c.collectSitemapURLs(ctx, root+path, base.Host, 0)
		if err != nil {
			lastErr = err
			continue
		}

		docs := c.sitemapDocuments(ctx, src, urls)
		if len(docs) > 0 {
			return docs, nil
		}
	}

	return nil, lastErr
}

// collectSitemapURLs fetches one sitemap and recursively resolves child
// sitemaps up to depth 2
func (c *Chain) collectSitemapURLs(ctx context.Context, sitemapURL, host string, depth int) ([]string, error) {
	if depth > 2 {
		return nil, nil
	}

	body, err := c.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	// A sitemap index holds child sitemaps rather than page URLs
	var index sitemapIndex
	if err := xml.Unmarshal([]byte(body), &index); err == nil && len(index.Sitemaps) > 0 {
		var urls []string
		children := index.Sitemaps
		if len(children) > maxChildSitemaps {
			children = children[:maxChildSitemaps]
		}
		for _, child := range children {
			childURLs, err := c.collectSitemapURLs(ctx, strings.TrimSpace(child.Loc), host, depth+1)
			if err != nil {
				continue
			}
			urls = append(urls, childURLs...)
		}
		return urls, nil
	}

	var set urlSet
	if err := xml.Unmarshal([]byte(body), &set); err != nil {
		return nil, err
	}

	limit := c.cfg.Crawl.MaxSitemapURLs
	if limit <= 0 {
		limit = 10
	}

	var urls []string
	for _, entry := range set.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if !sameHostTopical(loc, host) {
			continue
		}
		urls = append(urls, loc)
		if len(urls) >= limit {
			break
		}
	}
	return urls, nil
}

// sitemapDocuments fetches each discovered URL and synthesizes the title
// from its slug
func (c *Chain) sitemapDocuments(ctx context.Context, src model.Source, urls []string) []model.Document {
	var docs []model.Document

	for _, articleURL := range urls {
		body, err := c.fetch(ctx, articleURL)
		if err != nil {
			c.logf("source %s: sitemap article %s: %v", src.Name, articleURL, err)
			continue
		}

		content := pageText(body)
		if content == "" {
			continue
		}

		docs = append(docs, newDocument(src, articleURL, slugTitle(articleURL), content, nil))
	}

	return docs
}

// sameHostTopical keeps same-host URLs whose path mentions a topical keyword
func sameHostTopical(rawURL, host string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host != host {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, keyword := range topicalPathKeywords {
		if strings.Contains(path, keyword) {
			return true
		}
	}
	return false
}

// slugTitle derives a human-readable title from the last URL path segment
func slugTitle(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return strings.TrimSpace(last)
}

// pageText extracts the visible text of a fetched article page
func pageText(body string) string {
	root, err := parseHTML(body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(collapseWhitespace(visibleText(root)))
}
