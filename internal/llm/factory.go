package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/store"
)

// Options carry the collaborators wrapped around every provider.
type Options struct {
	Events store.EventRepo // optional request log
	Logger *zap.Logger     // optional
	Mock   *MockProvider   // used when Provider is "mock"
}

// NewProvider builds the configured backend and wraps it:
// caller → timeout → retry → recording → backend.
func NewProvider(ctx context.Context, cfg Config, opts Options) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		if opts.Mock != nil {
			base = opts.Mock
		} else {
			base = NewMockProvider()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("llm").With(zap.String("provider", base.Name()), zap.String("model", base.ModelID()))

	p := WithRecording(base, opts.Events, log)
	p = WithRetry(p, cfg.Retry, log)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	return p, nil
}
