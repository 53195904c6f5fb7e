package ai

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameOpenAI   ProviderName = "openai"
	ProviderNameDeepSeek ProviderName = "deepseek"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameOpenAI, ProviderNameDeepSeek:
		return true
	default:
		return false
	}
}

// Model name constants
const (
	ModelGPT4oMini    = "gpt-4o-mini"
	ModelGPT4o        = "gpt-4o"
	ModelDeepSeekChat = "deepseek-chat"
)
