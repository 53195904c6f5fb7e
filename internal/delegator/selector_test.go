package delegator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/agents"
	"morpheus/pkg/errors"
)

type chatFunc func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)

func (f chatFunc) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	return f(ctx, req)
}

func toolCallResponse(name, arguments string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message: ai.Message{
				Role: ai.RoleAssistant,
				ToolCalls: []ai.ToolCall{{
					ID:   "call_1",
					Type: "function",
					Function: ai.FunctionCall{
						Name:      name,
						Arguments: arguments,
					},
				}},
			},
			FinishReason: ai.FinishReasonToolCalls,
		}},
	}
}

func textResponse(content string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message:      ai.Message{Role: ai.RoleAssistant, Content: content},
			FinishReason: ai.FinishReasonStop,
		}},
	}
}

func testDescriptors() []agents.Descriptor {
	return []agents.Descriptor{
		{Name: "DCA agent", Type: agents.TypeDCA, Description: "manages DCA strategies"},
		{Name: "realtime search agent", Type: agents.TypeRealtimeSearch, Description: "searches the web"},
		{Name: "document agent", Type: agents.TypeRAG, Description: "answers over uploads", UploadRequired: true},
	}
}

func TestCandidatesUploadFiltering(t *testing.T) {
	s := NewSelector(nil, "test-model", testDescriptors())

	t.Run("no upload excludes upload-required agents", func(t *testing.T) {
		names := descriptorNames(s.Candidates(false))
		assert.Equal(t, []string{"DCA agent", "realtime search agent"}, names)
	})

	t.Run("upload present includes all agents", func(t *testing.T) {
		names := descriptorNames(s.Candidates(true))
		assert.Equal(t, []string{"DCA agent", "realtime search agent", "document agent"}, names)
	})
}

func descriptorNames(descs []agents.Descriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}

func TestSelectSuccess(t *testing.T) {
	var captured ai.ChatRequest
	chat := chatFunc(func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		captured = req
		return toolCallResponse("select_agent", `{"agent":"DCA agent"}`), nil
	})

	s := NewSelector(chat, "test-model", testDescriptors())
	name, err := s.Select(context.Background(), "set up a daily buy", false)
	require.NoError(t, err)
	assert.Equal(t, "DCA agent", name)

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "select_agent", captured.Tools[0].Function.Name)
	assert.Equal(t, "required", captured.ToolChoice)

	// Upload-required agents must not leak into the enum
	props := captured.Tools[0].Function.Parameters["properties"].(map[string]interface{})
	enum := props["agent"].(map[string]interface{})["enum"].([]string)
	assert.NotContains(t, enum, "document agent")
}

func TestSelectNoStructuredChoice(t *testing.T) {
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return textResponse("I think the DCA agent fits best."), nil
	})

	s := NewSelector(chat, "test-model", testDescriptors())
	_, err := s.Select(context.Background(), "set up a daily buy", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoAgentSelected))
}

func TestSelectMalformedArguments(t *testing.T) {
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return toolCallResponse("select_agent", `{"agent":`), nil
	})

	s := NewSelector(chat, "test-model", testDescriptors())
	_, err := s.Select(context.Background(), "hello", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoAgentSelected))
}

func TestSelectOutOfListChoice(t *testing.T) {
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return toolCallResponse("select_agent", `{"agent":"imaginary agent"}`), nil
	})

	s := NewSelector(chat, "test-model", testDescriptors())
	_, err := s.Select(context.Background(), "hello", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoAgentSelected))
	assert.Contains(t, err.Error(), "imaginary agent")
}

func TestSelectProviderError(t *testing.T) {
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, errors.Wrap(errors.ErrExternal, "provider down")
	})

	s := NewSelector(chat, "test-model", testDescriptors())
	_, err := s.Select(context.Background(), "hello", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
}
