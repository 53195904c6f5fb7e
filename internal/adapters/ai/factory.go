package ai

import (
	"morpheus/internal/adapters/config"
	"morpheus/pkg/errors"
)

// BuildRegistry initializes a ProviderRegistry with all providers that have
// API keys configured. At least one provider must be available.
func BuildRegistry(cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.OpenAIKey != "" {
		limiter := NewTokenBucketLimiter(ProviderNameOpenAI, cfg.ReqPerMinute, cfg.Burst)
		if err := registry.Register(NewOpenAIProvider(cfg.OpenAIKey, cfg.Timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if cfg.DeepSeekKey != "" {
		limiter := NewTokenBucketLimiter(ProviderNameDeepSeek, cfg.ReqPerMinute, cfg.Burst)
		if err := registry.Register(NewDeepSeekProvider(cfg.DeepSeekKey, cfg.Timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no AI providers configured")
	}

	return registry, nil
}

// DefaultProvider resolves the configured default chat provider.
func DefaultProvider(registry *ProviderRegistry, cfg config.AIConfig) (ChatProvider, error) {
	name := ProviderName(cfg.DefaultProvider)
	if !name.IsValid() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown AI provider %q", cfg.DefaultProvider)
	}
	return registry.Get(name)
}
