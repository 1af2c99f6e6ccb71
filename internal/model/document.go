package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document represents one crawled article
type Document struct {
	ID           string         `json:"id"`                      // Stable hash of source + URL
	Source       string         `json:"source"`                  // Configured source name
	URL          string         `json:"url"`                     // URL the article was fetched from
	CanonicalURL string         `json:"canonical_url,omitempty"` // Canonical URL if different
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	ContentHash  string         `json:"content_hash"`       // SHA-256 of content; re-fetch produces a new hash
	Language     string         `json:"language,omitempty"` // Detected language code (e.g. "en", "zh")
	PublishedAt  *time.Time     `json:"published_at,omitempty"`
	FetchedAt    time.Time      `json:"fetched_at"`
	Evidence     EvidenceBundle `json:"evidence"` // Populated at ingestion time
}

// DocumentID derives the stable identity of a document from its source and URL
func DocumentID(source, url string) string {
	hash := sha256.Sum256([]byte(source + "|" + url))
	return hex.EncodeToString(hash[:])[:16]
}

// HashContent returns the content hash for deduplication and re-fetch detection
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// EvidenceBundle holds the extracted snippets and the claims derived from them
type EvidenceBundle struct {
	Snippets []Snippet `json:"snippets"`
	Claims   []Claim   `json:"claims"`
}

// Snippet is a raw substring of the article content with an internal relevance score
type Snippet struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"` // 0-1, higher means more signal terms matched
}

// Claim represents a structured, numerically-grounded assertion extracted from a snippet.
// Evidence is always a substring of one of the bundle's snippets - claims never
// invent data not present in the source text.
type Claim struct {
	Statement string   `json:"statement"`           // Free-text restatement of the claim
	Evidence  string   `json:"evidence"`            // Supporting snippet text
	Tags      []string `json:"tags,omitempty"`      // e.g. "human-level", "generalization"
	Benchmark string   `json:"benchmark,omitempty"` // Normalized benchmark name (e.g. "MMLU")
	Metric    string   `json:"metric,omitempty"`    // Metric name (e.g. "accuracy")
	Value     *float64 `json:"value,omitempty"`     // Numeric score, normalized to 0-1 for percentages
	Delta     *float64 `json:"delta,omitempty"`     // Reported improvement, in Unit
	Unit      string   `json:"unit,omitempty"`      // "%", "points", etc.
}

// HasTag reports whether the claim carries the given tag
func (c Claim) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
