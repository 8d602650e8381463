package llm

import (
	"context"
	"fmt"
)

// Client sends one prompt to a provider and returns its raw JSON text. It does no
// validation; that is the Gateway's job.
type Client interface {
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model a tier resolves to
	GetModel(tier ModelTier) string
	Close() error
}

// NewClient builds the client for the configured provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}
