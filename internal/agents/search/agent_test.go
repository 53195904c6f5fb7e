package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/agents"
	"morpheus/internal/services/session"
	"morpheus/pkg/errors"
)

type chatFunc func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)

func (f chatFunc) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	return f(ctx, req)
}

func textResponse(content string) *ai.ChatResponse {
	return &ai.ChatResponse{
		Choices: []ai.Choice{{
			Message:      ai.Message{Role: ai.RoleAssistant, Content: content},
			FinishReason: ai.FinishReasonStop,
		}},
	}
}

// mockFetcher records search terms.
type mockFetcher struct {
	calls   []string
	results string
	err     error
}

func (m *mockFetcher) Search(_ context.Context, term string) (string, error) {
	m.calls = append(m.calls, term)
	if m.err != nil {
		return "", m.err
	}
	return m.results, nil
}

// memoryKV is an in-memory session backend.
type memoryKV struct {
	data map[string][]byte
}

func newMemoryKV() *memoryKV { return &memoryKV{data: make(map[string][]byte)} }

func (m *memoryKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	state := value.(*session.State)
	m.data[key] = []byte(state.LastSearchTerm)
	return nil
}

func (m *memoryKV) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return errors.Wrap(errors.ErrNotFound, key)
	}
	if state, ok := dest.(*session.State); ok {
		state.LastSearchTerm = string(raw)
	}
	return nil
}

func newTestAgent(t *testing.T, chat ai.ChatProvider, fetcher Fetcher, sessions *session.Store) *Agent {
	t.Helper()
	ag, err := New(agents.Descriptor{Name: "realtime search agent", Type: agents.TypeRealtimeSearch}, chat, "test-model", fetcher, sessions)
	require.NoError(t, err)
	return ag
}

func request(content, conversationID string) *agents.ChatRequest {
	return &agents.ChatRequest{
		Prompt:         agents.ChatPrompt{Role: "user", Content: content},
		ConversationID: conversationID,
	}
}

func TestChatNoSearchTerm(t *testing.T) {
	fetcher := &mockFetcher{results: "Result:\nsome snippet"}
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		t.Fatal("model must not be called without a search term")
		return nil, nil
	})
	ag := newTestAgent(t, chat, fetcher, nil)

	resp, err := ag.Chat(context.Background(), request("", "conv-1"))
	require.NoError(t, err)
	assert.Equal(t, "Web search failed. Please provide a search term.", resp.Content)
	assert.Equal(t, "assistant", resp.Role)

	// No network call happens on a missing term
	assert.Empty(t, fetcher.calls)
}

func TestChatSearchAndSynthesize(t *testing.T) {
	fetcher := &mockFetcher{results: "Result:\nETH is around $3000"}
	chat := chatFunc(func(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "ETH is around $3000")
		return textResponse("ETH currently trades near $3000."), nil
	})
	ag := newTestAgent(t, chat, fetcher, nil)

	resp, err := ag.Chat(context.Background(), request("eth price", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"eth price"}, fetcher.calls)
	assert.Equal(t, "ETH currently trades near $3000.", resp.Content)
}

func TestChatFallsBackToLastTerm(t *testing.T) {
	kv := newMemoryKV()
	sessions := session.NewStore(kv, time.Hour, nil)
	fetcher := &mockFetcher{results: "Result:\nsnippet"}
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return textResponse("answer"), nil
	})
	ag := newTestAgent(t, chat, fetcher, sessions)

	// First request stores the term
	_, err := ag.Chat(context.Background(), request("bitcoin halving", "conv-7"))
	require.NoError(t, err)

	// Second request with empty prompt reuses it
	_, err = ag.Chat(context.Background(), request("", "conv-7"))
	require.NoError(t, err)

	assert.Equal(t, []string{"bitcoin halving", "bitcoin halving"}, fetcher.calls)
}

func TestChatNetworkFaultReturnedAsText(t *testing.T) {
	fetcher := &mockFetcher{err: errors.Wrap(errors.ErrExternal, "connection refused")}
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		t.Fatal("model must not be called when the search fails")
		return nil, nil
	})
	ag := newTestAgent(t, chat, fetcher, nil)

	resp, err := ag.Chat(context.Background(), request("eth price", ""))
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "Error performing web search:")
}

func TestChatSynthesisFaultPropagates(t *testing.T) {
	fetcher := &mockFetcher{results: "Result:\nsnippet"}
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, errors.Wrap(errors.ErrExternal, "model unavailable")
	})
	ag := newTestAgent(t, chat, fetcher, nil)

	_, err := ag.Chat(context.Background(), request("eth price", ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
}

func TestPerformSearchReturnsRawSnippets(t *testing.T) {
	fetcher := &mockFetcher{results: "Result:\nfirst\n\nResult:\nsecond"}
	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		t.Fatal("perform_search must not synthesize")
		return nil, nil
	})
	ag := newTestAgent(t, chat, fetcher, nil)

	resp, err := ag.PerformSearch(context.Background(), request("eth price", ""))
	require.NoError(t, err)
	assert.Equal(t, "Result:\nfirst\n\nResult:\nsecond", resp.Content)
}
