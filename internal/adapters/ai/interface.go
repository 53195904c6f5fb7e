package ai

import "context"

// Provider describes an AI provider and its model catalog.
type Provider interface {
	Name() ProviderName

	// GetModel returns metadata for a specific model.
	GetModel(ctx context.Context, model string) (ModelInfo, error)

	// ListModels returns the list of available models for the provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// SupportsTools indicates whether the provider supports tool/function calling.
	SupportsTools() bool
}

// ChatProvider is the chat completion surface consumers depend on.
// All calls are synchronous; a hung upstream call is bounded only by the
// request context and the provider timeout.
type ChatProvider interface {
	// Chat sends a chat completion request with tool calling support.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// RegisteredProvider combines provider metadata with chat completion. This
// is what concrete providers implement and the registry stores.
type RegisteredProvider interface {
	Provider
	ChatProvider
}

// ModelInfo describes the capabilities and pricing of a model.
type ModelInfo struct {
	Provider        ProviderName
	Name            string  // Provider-specific model identifier
	Family          string  // Family/category name (e.g., "gpt-4o")
	MaxTokens       int     // Maximum context length
	InputCostPer1K  float64 // USD per 1K input tokens
	OutputCostPer1K float64 // USD per 1K output tokens
	SupportsTools   bool    // Whether tool calling is supported
}
