package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const translateSystemPrompt = `You are a translator. Translate each numbered line to English.
Preserve benchmark names, numbers, percentages and units exactly as written.
Reply with the same numbered lines, one translation per line, nothing else.`

// OpenAITranslator translates text batches through the Chat Completions API.
type OpenAITranslator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAITranslator builds a translator from an API key; baseURL and model
// are optional overrides.
func NewOpenAITranslator(apiKey, baseURL, model string) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITranslator{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: 30 * time.Second,
	}, nil
}

// Translate converts texts to English, preserving order. The response is
// parsed by numbered line; a mismatched line count is an error so callers
// fall back to the untranslated originals.
func (t *OpenAITranslator) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, text := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ReplaceAll(text, "\n", " "))
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: translateSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("translation API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("translation returned no choices")
	}

	lines := parseNumberedLines(resp.Choices[0].Message.Content)
	if len(lines) != len(texts) {
		return nil, fmt.Errorf("translation returned %d lines, expected %d", len(lines), len(texts))
	}
	return lines, nil
}

// parseNumberedLines strips "N. " prefixes and drops blank lines
func parseNumberedLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, ". "); idx > 0 && idx <= 4 {
			if _, err := fmt.Sscanf(line[:idx], "%d", new(int)); err == nil {
				line = strings.TrimSpace(line[idx+2:])
			}
		}
		out = append(out, line)
	}
	return out
}
