package extract

import (
	"regexp"
	"strings"

	"github.com/pkozlov/agiwatch/internal/model"
)

const (
	maxSnippets       = 12
	minSentenceLength = 20
	maxSentenceLength = 600
)

// Vocabulary that marks a sentence as high-signal for capability analysis
var signalTerms = []string{
	"agi", "superintelligen", "frontier model", "human-level", "human level",
	"generaliz", "emergent", "capabilit", "benchmark", "state-of-the-art",
	"sota", "self-improv", "recursive", "autonomous", "reasoning",
	"outperform", "surpass", "breakthrough", "scaling",
}

var numericPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*%|\b\d+(?:\.\d+)?\b`)

// Extractor turns raw article text into an evidence bundle:
// a bounded set of high-signal snippets plus the structured claims
// parsed out of them.
type Extractor struct {
	parser *ClaimParser
}

// NewExtractor creates an evidence extractor
func NewExtractor() *Extractor {
	return &Extractor{parser: NewClaimParser()}
}

// Extract builds the evidence bundle for one document's content.
// Snippets capture "has relevant text"; claims capture "has structured
// numeric evidence" - downstream scoring weighs the two independently.
func (e *Extractor) Extract(content string) model.EvidenceBundle {
	sentences := splitSentences(content)

	var snippets []model.Snippet
	for _, sentence := range sentences {
		relevance := scoreRelevance(sentence)
		if relevance <= 0 {
			continue
		}
		snippets = append(snippets, model.Snippet{
			Text:      sentence,
			Relevance: relevance,
		})
		if len(snippets) >= maxSnippets {
			break
		}
	}

	var claims []model.Claim
	for _, snippet := range snippets {
		// A claim is only emitted when a benchmark or numeric pattern
		// actually matched; prose without numbers stays snippet-only.
		if claim, ok := e.parser.Parse(snippet.Text); ok {
			claims = append(claims, claim)
		}
	}

	return model.EvidenceBundle{
		Snippets: snippets,
		Claims:   claims,
	}
}

// scoreRelevance rates a sentence by signal-term and numeric matches.
// Zero means the sentence carries no evidentiary signal at all.
func scoreRelevance(sentence string) float64 {
	lower := strings.ToLower(sentence)

	matches := 0
	for _, term := range signalTerms {
		if strings.Contains(lower, term) {
			matches++
		}
	}

	hasNumber := numericPattern.MatchString(sentence)
	hasBenchmark := FindBenchmark(sentence) != ""

	if matches == 0 && !hasBenchmark {
		return 0
	}

	score := float64(matches) * 0.2
	if hasNumber {
		score += 0.2
	}
	if hasBenchmark {
		score += 0.3
	}
	if score > 1 {
		score = 1
	}
	return score
}

// splitSentences splits text into sentences, keeping only ones within
// plausible length bounds
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= minSentenceLength && len(sentence) <= maxSentenceLength {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			// Look ahead to avoid splitting on decimals ("87.5%") and abbreviations
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t') {
				flush()
			}
		}
	}
	flush()

	return sentences
}
