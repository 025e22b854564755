package model

import "time"

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HTTP    HTTPConfig    `yaml:"http"`
	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
	Store   StoreConfig   `yaml:"store"`
	Limits  LimitsConfig  `yaml:"limits"`
	Diag    DiagConfig    `yaml:"diag"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// HTTPConfig configures the article fetcher.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots"`
}

// ExtractConfig configures the document extractor.
type ExtractConfig struct {
	MaxSummaryParagraphs int      `yaml:"max_summary_paragraphs"`
	SectionDenylist      []string `yaml:"section_denylist"`
}

// LLMConfig configures the text-generation provider.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // From env only, never from file
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`

	// MaxInputChars bounds how much article text goes into the quiz
	// prompt. Longer input costs more and risks truncation-induced
	// incoherence, so completeness is traded for reliability.
	MaxInputChars int `yaml:"max_input_chars"`

	// EntityMaxInputChars bounds input for the entity-extraction prompt.
	EntityMaxInputChars int `yaml:"entity_max_input_chars"`
}

// StoreConfig configures the quiz database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LimitsConfig configures outbound request pacing.
type LimitsConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// DiagConfig configures the diagnostic sink for unparseable model output.
type DiagConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		HTTP: HTTPConfig{
			Timeout:       15 * time.Second,
			UserAgent:     "WikiQuiz/1.0 (quiz generator)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Extract: ExtractConfig{
			MaxSummaryParagraphs: 5,
			SectionDenylist: []string{
				"Contents", "References", "External links",
				"Notes", "See also", "Further reading",
			},
		},
		LLM: LLMConfig{
			Provider:            "openai",
			Model:               "",
			Timeout:             60,
			MaxTokens:           4096,
			MaxInputChars:       8000,
			EntityMaxInputChars: 4000,
		},
		Store: StoreConfig{
			Path: "wikiquiz.db",
		},
		Limits: LimitsConfig{
			RequestsPerSecond: 1.0,
			Burst:             3,
		},
		Diag: DiagConfig{
			Dir: "diag",
		},
	}
}
