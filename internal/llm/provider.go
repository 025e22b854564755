package llm

import (
	"context"

	"wikiquiz/internal/model"
)

// Provider defines the interface for text-generation providers. The
// provider is treated as an untrusted black box: it returns text, and
// whatever structure that text claims to have is the caller's problem.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete runs a single completion call. No retries are made; a
	// failed or garbled call surfaces to the caller, which owns retry
	// policy.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and
	// reachable.
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is the input for one completion call.
type CompletionRequest struct {
	// System is the system instruction (provider-specific handling).
	System string

	// Prompt is the user prompt.
	Prompt string

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls sampling; quiz generation wants it low.
	Temperature float64
}

// CompletionResponse is the raw output of one completion call.
type CompletionResponse struct {
	// Text is the response body, returned verbatim.
	Text string

	// Model is the model that generated the response.
	Model string

	// TokensUsed tracks token consumption where the provider reports it.
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for OpenAI/Anthropic.
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama).
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens for response generation.
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60,
		MaxTokens: 4096,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
}
