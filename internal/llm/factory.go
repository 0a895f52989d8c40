package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estudai/estudai/internal/store"
)

// NewProvider builds the configured backend and wraps it with Wrap.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	base, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", cfg.Provider, err)
	}
	return Wrap(base, cfg, events, logger), nil
}

func newBackend(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}

// Wrap layers the decorators around base, outermost first:
// timeout, retry, validation, logging. Validation sits inside retry so a
// malformed answer gets its one retry, and logging sits on the backend so
// every attempt is recorded.
func Wrap(base Provider, cfg Config, events store.EventRepo, logger *slog.Logger) Provider {
	p := WithLogging(base, cfg.Provider, events, logger)
	p = WithValidation(p)
	p = WithRetry(p, cfg.Retry)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p
}
