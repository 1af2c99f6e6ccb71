package acquire

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/pkozlov/agiwatch/internal/model"
)

// Common feed locations probed when a source has none configured
var feedPathCandidates = []string{
	"/feed", "/rss", "/feed.xml", "/rss.xml", "/atom.xml", "/index.xml",
}

// runFeed tries each candidate feed URL and stops at the first feed yielding
// at least one parsable item with a non-empty title and content. gofeed
// normalizes RSS and Atom shapes into one item model.
func (c *Chain) runFeed(ctx context.Context, src model.Source) ([]model.Document, error) {
	candidates := src.FeedURLs
	if len(candidates) == 0 {
		base := strings.TrimSuffix(src.URL, "/")
		for _, path := range feedPathCandidates {
			candidates = append(candidates, base+path)
		}
	}

	var lastErr error
	for _, feedURL := range candidates {
		body, err := c.fetch(ctx, feedURL)
		if err != nil {
			lastErr = err
			continue
		}

		feed, err := c.feedParser.ParseString(body)
		if err != nil {
			lastErr = err
			continue
		}

		docs := c.feedDocuments(src, feed)
		if len(docs) > 0 {
			return docs, nil
		}
	}

	return nil, lastErr
}

// feedDocuments converts feed items to documents, skipping items without a
// usable title and content
func (c *Chain) feedDocuments(src model.Source, feed *gofeed.Feed) []model.Document {
	var docs []model.Document

	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || item.Link == "" {
			continue
		}

		content := strings.TrimSpace(item.Content)
		if content == "" {
			content = strings.TrimSpace(item.Description)
		}
		if content == "" {
			continue
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		docs = append(docs, newDocument(src, item.Link, title, content, published))
	}

	return docs
}
