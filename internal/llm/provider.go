package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkozlov/agiwatch/internal/model"
)

// Provider is the model oracle: a text-classification call returning a
// probabilistic relevance score for one document
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify scores one document
	Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest is the oracle input for one document
type ClassifyRequest struct {
	SystemPrompt     string
	DocumentTitle    string
	EvidenceSnippets []string
	RawContent       string
}

// ClassifyResponse is the oracle's JSON response shape
type ClassifyResponse struct {
	Score                float64  `json:"score"`      // 0-1 relevance
	Confidence           float64  `json:"confidence"` // 0-1
	Indicators           []string `json:"indicators"`
	Explanation          string   `json:"explanation"`
	SeverityHint         string   `json:"severity_hint"`
	EvidenceQuality      string   `json:"evidence_quality"`
	RequiresVerification bool     `json:"requires_verification"`
	CrossReferences      []string `json:"cross_references"`
}

// DefaultResponse is the documented fallback used when the oracle returns
// malformed JSON. It never raises: zero score, investigate recommendation.
func DefaultResponse() *ClassifyResponse {
	return &ClassifyResponse{
		Score:                0,
		Confidence:           0,
		Indicators:           []string{},
		Explanation:          "response could not be parsed",
		SeverityHint:         "none",
		EvidenceQuality:      "unknown",
		RequiresVerification: true,
		CrossReferences:      []string{},
	}
}

// ParseResponse decodes the oracle's raw text into a ClassifyResponse.
// Models sometimes wrap JSON in markdown fences or prose; the parser strips
// fences and scans for the first JSON object before falling back to the
// default object.
func ParseResponse(raw string) *ClassifyResponse {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.Index(cleaned, "{"); start > 0 {
		cleaned = cleaned[start:]
	}
	if end := strings.LastIndex(cleaned, "}"); end >= 0 {
		cleaned = cleaned[:end+1]
	}

	var resp ClassifyResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return DefaultResponse()
	}

	resp.Score = clamp01(resp.Score)
	resp.Confidence = clamp01(resp.Confidence)
	return &resp
}

// Config holds oracle provider configuration
type Config struct {
	Provider  string // "openai" or "" (disabled)
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   int // seconds
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

// BuildSystemPrompt is the default classification prompt
func BuildSystemPrompt() string {
	return `You are a careful analyst reviewing an article for concrete, verifiable
signals of unusually rapid AI capability progress.

Score the document from 0.0 (irrelevant or marketing noise) to 1.0 (specific,
numerically-grounded evidence of a major capability jump). Weigh structured
numeric evidence far above adjectives. Respond with ONLY a JSON object:

{
  "score": 0.0,
  "confidence": 0.0,
  "indicators": [],
  "explanation": "",
  "severity_hint": "none|low|medium|high|critical",
  "evidence_quality": "none|weak|moderate|strong",
  "requires_verification": false,
  "cross_references": []
}

List in cross_references any named outside sources the article claims agree
with its findings. Do not invent sources.`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
