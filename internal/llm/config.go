package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds provider configuration.
type Config struct {
	// Provider selects the backend: "gemini", "openai", "anthropic", "mock".
	Provider string

	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Retry     RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// GeminiConfig holds Gemini-specific settings.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenAIConfig holds OpenAI-specific settings. BaseURL allows
// OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns sensible defaults. Gemini is the default backend;
// it is what the tutor's curriculum prompts were tuned against.
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from MLTUTOR_* environment variables,
// falling back to defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("MLTUTOR_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if k := os.Getenv("MLTUTOR_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("MLTUTOR_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}
	if k := os.Getenv("MLTUTOR_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("MLTUTOR_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("MLTUTOR_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	if k := os.Getenv("MLTUTOR_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("MLTUTOR_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	return cfg
}

// DiscoverConfig probes the standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic) and returns a Config for the first key
// found. Returns (Config{}, false) when none is set; missing generation
// credentials are a fatal startup error for the serving path.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()

	// Explicit MLTUTOR_* configuration wins when it is complete.
	if err := cfg.Validate(); err == nil && providerKeySet(cfg) {
		return cfg, true
	}

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

func providerKeySet(c Config) bool {
	switch c.Provider {
	case "gemini":
		return c.Gemini.APIKey != ""
	case "openai":
		return c.OpenAI.APIKey != ""
	case "anthropic":
		return c.Anthropic.APIKey != ""
	case "mock":
		return true
	}
	return false
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("MLTUTOR_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("MLTUTOR_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("MLTUTOR_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "mock":
		// No key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
