package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Classify scores one document using the Chat Completions API.
// A malformed response body falls back to the documented default object
// rather than returning an error.
func (p *OpenAIProvider) Classify(ctx context.Context, req ClassifyRequest) (*ClassifyResponse, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = BuildSystemPrompt()
	}

	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(req),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2, // Focused, deterministic-ish classification output
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return DefaultResponse(), nil
	}

	return ParseResponse(resp.Choices[0].Message.Content), nil
}

// buildUserPrompt assembles title, evidence snippets and truncated content
func buildUserPrompt(req ClassifyRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n\n", req.DocumentTitle)

	if len(req.EvidenceSnippets) > 0 {
		sb.WriteString("Extracted evidence snippets:\n")
		for _, snippet := range req.EvidenceSnippets {
			fmt.Fprintf(&sb, "- %s\n", snippet)
		}
		sb.WriteString("\n")
	}

	content := req.RawContent
	const maxContent = 6000
	if len(content) > maxContent {
		content = content[:maxContent]
	}
	fmt.Fprintf(&sb, "Article content:\n%s\n", content)

	return sb.String()
}
