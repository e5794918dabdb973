package ai

import (
	"context"
	"fmt"
)

// Provider names accepted by NewCompleter.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// NewCompleter builds the Completer for provider. The returned func releases its resources
// and is never nil.
func NewCompleter(ctx context.Context, provider string, opts Options) (Completer, func(), error) {
	switch provider {
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case ProviderOpenRouter, "":
		c, err := NewOpenRouterClient(opts)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", provider)
	}
}
