package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a text-generation provider based on configuration.
// Unlike an optional add-on, generation is the whole product here, so an
// empty provider name is an error rather than a disabled feature.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}
