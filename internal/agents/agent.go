package agents

import (
	"context"
	"encoding/json"

	"morpheus/pkg/errors"
)

// Agent handles one category of user request behind a uniform chat entry
// point.
type Agent interface {
	// Name returns the unique registry key for this agent.
	Name() string

	// Chat handles a routed chat request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Capability interfaces for the generic route boundary. An agent exposes a
// routable method by implementing the matching interface; the dispatcher
// probes with a type assertion instead of reflection.

// Searcher exposes the raw web search step without answer synthesis.
type Searcher interface {
	PerformSearch(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// StrategyReporter exposes a listing of managed DCA strategies.
type StrategyReporter interface {
	ListStrategies(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatPrompt accepts either a bare string or a {role, content} object on the
// wire.
type ChatPrompt struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// UnmarshalJSON decodes a prompt from a string or an object form.
func (p *ChatPrompt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Role = "user"
		p.Content = s
		return nil
	}

	type alias ChatPrompt
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "prompt must be a string or an object with content")
	}
	*p = ChatPrompt(obj)
	return nil
}

// ChatRequest is the payload passed through unchanged to the selected agent.
type ChatRequest struct {
	Prompt          ChatPrompt `json:"prompt"`
	UseUploadedFile bool       `json:"use_uploaded_file,omitempty"`
	ConversationID  string     `json:"conversation_id,omitempty"`
}

// Validate checks the request carries a usable prompt.
func (r *ChatRequest) Validate() error {
	if r == nil || r.Prompt.Content == "" {
		return errors.Wrap(errors.ErrInvalidInput, "missing required prompt")
	}
	return nil
}

// ChatResponse is the uniform agent reply.
type ChatResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// NextTurnAgent lets an agent claim the following turn, bypassing
	// selection for the same conversation.
	NextTurnAgent string `json:"next_turn_agent,omitempty"`
}

// Assistant builds a plain assistant reply.
func Assistant(content string) *ChatResponse {
	return &ChatResponse{Role: "assistant", Content: content}
}
