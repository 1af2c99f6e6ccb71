package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a model oracle from configuration. An empty provider
// name disables the oracle entirely (nil, nil) - analysis then runs on the
// heuristic signal alone.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}
