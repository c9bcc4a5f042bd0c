// Package llm provides the client for the external scoring/analysis
// service behind a provider-agnostic interface. All calls run with a
// per-attempt timeout and bounded retries.
package llm

import (
	"context"

	"github.com/pkg/errors"
)

// Service is the minimal surface the engine needs from a provider.
// GenerateJSON requests machine-readable output (JSON response mode where
// the provider supports it) and strips stray markdown fences; callers
// still validate the reply against their own schema.
type Service interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// NewService builds the configured provider's client.
func NewService(cfg Config) (Service, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAIService(cfg)
	case ProviderGoogle:
		return newGoogleService(cfg)
	case ProviderAnthropic:
		return newAnthropicService(cfg)
	default:
		return nil, errors.Errorf("unsupported provider %q (expected openai, google, or anthropic)", cfg.Provider)
	}
}
