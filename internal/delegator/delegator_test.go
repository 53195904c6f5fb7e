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

// fakeAgent records invocations and returns canned results.
type fakeAgent struct {
	name     string
	chatErr  error
	chatResp *agents.ChatResponse
	calls    int
}

func (f *fakeAgent) Name() string { return f.name }

func (f *fakeAgent) Chat(_ context.Context, _ *agents.ChatRequest) (*agents.ChatResponse, error) {
	f.calls++
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chatResp, nil
}

// searchingAgent additionally exposes the perform_search capability.
type searchingAgent struct {
	fakeAgent
	searchResp *agents.ChatResponse
}

func (f *searchingAgent) PerformSearch(_ context.Context, _ *agents.ChatRequest) (*agents.ChatResponse, error) {
	return f.searchResp, nil
}

func chatRequest(content string) *agents.ChatRequest {
	return &agents.ChatRequest{Prompt: agents.ChatPrompt{Role: "user", Content: content}}
}

func newTestDelegator(t *testing.T, ags ...agents.Agent) (*Delegator, *Registry) {
	t.Helper()
	registry := NewRegistry()
	for _, ag := range ags {
		registry.add(ag)
	}
	return New(registry, nil), registry
}

func TestDelegateChatUnknownAgent(t *testing.T) {
	known := &fakeAgent{name: "DCA agent", chatResp: agents.Assistant("done")}
	d, _ := newTestDelegator(t, known)

	_, err := d.DelegateChat(context.Background(), "nonexistent agent", chatRequest("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAgentNotFound))

	// No agent may run on a failed lookup
	assert.Zero(t, known.calls)
}

func TestDelegateChatSuccess(t *testing.T) {
	ag := &fakeAgent{name: "DCA agent", chatResp: agents.Assistant("created")}
	d, _ := newTestDelegator(t, ag)

	resp, err := d.DelegateChat(context.Background(), "DCA agent", chatRequest("hi"))
	require.NoError(t, err)
	assert.Equal(t, "assistant", resp.Role)
	assert.Equal(t, "created", resp.Content)
	assert.Equal(t, 1, ag.calls)
}

func TestDelegateChatAgentFailureBecomesServerFault(t *testing.T) {
	ag := &fakeAgent{name: "DCA agent", chatErr: errors.New("upstream exploded")}
	d, _ := newTestDelegator(t, ag)

	_, err := d.DelegateChat(context.Background(), "DCA agent", chatRequest("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))

	// The raw agent error must not leak through
	assert.NotContains(t, err.Error(), "upstream exploded")
}

func TestDelegateRouteCapabilityProbing(t *testing.T) {
	searcher := &searchingAgent{
		fakeAgent:  fakeAgent{name: "realtime search agent"},
		searchResp: agents.Assistant("Result:\nsnippet"),
	}
	plain := &fakeAgent{name: "DCA agent", chatResp: agents.Assistant("x")}
	d, _ := newTestDelegator(t, searcher, plain)

	t.Run("agent with capability", func(t *testing.T) {
		resp, err := d.DelegateRoute(context.Background(), "realtime search agent", chatRequest("hi"), MethodPerformSearch)
		require.NoError(t, err)
		assert.Equal(t, "Result:\nsnippet", resp.Content)
	})

	t.Run("agent without capability", func(t *testing.T) {
		_, err := d.DelegateRoute(context.Background(), "DCA agent", chatRequest("hi"), MethodPerformSearch)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMethodNotFound))
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := d.DelegateRoute(context.Background(), "realtime search agent", chatRequest("hi"), "does_not_exist")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMethodNotFound))
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := d.DelegateRoute(context.Background(), "ghost", chatRequest("hi"), MethodPerformSearch)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrAgentNotFound))
	})
}

type stubFetcher struct{}

func (stubFetcher) Search(_ context.Context, _ string) (string, error) { return "", nil }

func TestBuildRegistrySkipsFailedAgents(t *testing.T) {
	descriptors := []agents.Descriptor{
		{Name: "broken agent", Type: "unknown_type", Description: "cannot be built"},
		{Name: "realtime search agent", Type: agents.TypeRealtimeSearch, Description: "searches the web"},
	}

	chat := chatFunc(func(_ context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		return textResponse("ok"), nil
	})

	registry := BuildRegistry(descriptors, Deps{
		Chat:   chat,
		Model:  "test-model",
		Search: stubFetcher{},
	})

	// Partial success: the broken descriptor is skipped, the rest load
	assert.Equal(t, 1, registry.Len())
	_, ok := registry.Get("realtime search agent")
	assert.True(t, ok)
	_, ok = registry.Get("broken agent")
	assert.False(t, ok)
}

// panickingAgent simulates an agent hitting an unrecovered internal fault.
type panickingAgent struct {
	name string
}

func (p *panickingAgent) Name() string { return p.name }

func (p *panickingAgent) Chat(_ context.Context, _ *agents.ChatRequest) (*agents.ChatResponse, error) {
	panic("nil embedder dereference")
}

func (p *panickingAgent) PerformSearch(_ context.Context, _ *agents.ChatRequest) (*agents.ChatResponse, error) {
	panic("nil embedder dereference")
}

func TestDelegateChatRecoversAgentPanic(t *testing.T) {
	ag := &panickingAgent{name: "rag agent"}
	d, _ := newTestDelegator(t, ag)

	resp, err := d.DelegateChat(context.Background(), "rag agent", chatRequest("hi"))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, errors.ErrInternal))

	// The panic value must not leak through the dispatch boundary
	assert.NotContains(t, err.Error(), "nil embedder dereference")
}

func TestDelegateRouteRecoversAgentPanic(t *testing.T) {
	ag := &panickingAgent{name: "rag agent"}
	d, _ := newTestDelegator(t, ag)

	resp, err := d.DelegateRoute(context.Background(), "rag agent", chatRequest("hi"), MethodPerformSearch)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}
