package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/mltutor/internal/store"
)

// NewProvider builds the configured Provider wrapped with retry and event
// logging: caller → retry → logging → base. A nil events repo disables
// logging.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var p Provider = base
	if events != nil {
		p = WithLogging(p, cfg.Provider, events)
	}
	return WithRetry(p, cfg.Retry), nil
}
