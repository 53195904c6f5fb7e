package ai

import (
	"context"
	"strings"
	"time"

	"morpheus/pkg/errors"
)

const deepseekAPIURL = "https://api.deepseek.com/v1/chat/completions"

// Ensure DeepSeekProvider implements RegisteredProvider
var _ RegisteredProvider = (*DeepSeekProvider)(nil)

// DeepSeekProvider implements chat completions against the DeepSeek API,
// which is wire-compatible with OpenAI chat completions.
type DeepSeekProvider struct {
	apiKey      string
	apiURL      string
	timeout     time.Duration
	rateLimiter RateLimiter
	models      []ModelInfo
}

// NewDeepSeekProvider creates a new DeepSeek provider instance.
func NewDeepSeekProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *DeepSeekProvider {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	return &DeepSeekProvider{
		apiKey:      apiKey,
		apiURL:      deepseekAPIURL,
		timeout:     timeout,
		rateLimiter: limiter,
		models:      deepSeekModels(),
	}
}

// Name returns provider name.
func (p *DeepSeekProvider) Name() ProviderName { return ProviderNameDeepSeek }

// GetModel returns model info by name.
func (p *DeepSeekProvider) GetModel(_ context.Context, model string) (ModelInfo, error) {
	for _, m := range p.models {
		if strings.EqualFold(m.Name, model) {
			return m, nil
		}
	}
	return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "deepseek model %s not found", model)
}

// ListModels lists available models.
func (p *DeepSeekProvider) ListModels(_ context.Context) ([]ModelInfo, error) {
	return p.models, nil
}

// SupportsTools indicates tool calling support.
func (p *DeepSeekProvider) SupportsTools() bool { return true }

// Chat sends a chat completion request to the DeepSeek API.
func (p *DeepSeekProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "deepseek API key not configured")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	return doChatRequest(ctx, p.apiURL, p.apiKey, p.timeout, req)
}

func deepSeekModels() []ModelInfo {
	return []ModelInfo{
		{
			Provider:        ProviderNameDeepSeek,
			Name:            ModelDeepSeekChat,
			Family:          "deepseek",
			MaxTokens:       64000,
			InputCostPer1K:  0.00027,
			OutputCostPer1K: 0.0011,
			SupportsTools:   true,
		},
	}
}
