package search

import (
	"context"
	"fmt"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/agents"
	"morpheus/internal/services/session"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

// noTermMessage is returned when neither the request nor the conversation
// history carries a search term. No network call is made in that case.
const noTermMessage = "Web search failed. Please provide a search term."

const synthesisSystemPrompt = "You are a helpful assistant that synthesizes information from web search results to answer user queries."

// Fetcher performs the actual search request. Satisfied by the search
// adapter client.
type Fetcher interface {
	Search(ctx context.Context, term string) (string, error)
}

// Agent answers queries by searching the web and synthesizing the results.
type Agent struct {
	name     string
	chat     ai.ChatProvider
	model    string
	fetcher  Fetcher
	sessions *session.Store
	log      *logger.Logger
}

// Ensure the capability surface
var (
	_ agents.Agent    = (*Agent)(nil)
	_ agents.Searcher = (*Agent)(nil)
)

// New creates the realtime search agent.
func New(desc agents.Descriptor, chat ai.ChatProvider, model string, fetcher Fetcher, sessions *session.Store) (*Agent, error) {
	if chat == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "search agent requires a chat provider")
	}
	if fetcher == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "search agent requires a fetcher")
	}

	return &Agent{
		name:     desc.Name,
		chat:     chat,
		model:    model,
		fetcher:  fetcher,
		sessions: sessions,
		log:      logger.Get().With("agent", desc.Name),
	}, nil
}

// Name returns the registry key.
func (a *Agent) Name() string { return a.name }

// Chat performs a search for the prompt and synthesizes an answer. An empty
// prompt falls back to the last search term for the conversation, so it is
// not rejected here.
func (a *Agent) Chat(ctx context.Context, req *agents.ChatRequest) (*agents.ChatResponse, error) {
	if req == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "missing request")
	}

	term, resp, err := a.resolveTerm(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	a.log.Infow("Performing web search", "term", term)

	results, err := a.fetcher.Search(ctx, term)
	if err != nil {
		// Network faults come back as text, not structured errors.
		a.log.Errorw("Web search failed", "error", err)
		return agents.Assistant(fmt.Sprintf("Error performing web search: %v", err)), nil
	}

	answer, err := a.synthesize(ctx, term, results)
	if err != nil {
		// Synthesis faults propagate.
		return nil, err
	}

	return agents.Assistant(answer), nil
}

// PerformSearch implements the Searcher capability: raw snippets without
// synthesis.
func (a *Agent) PerformSearch(ctx context.Context, req *agents.ChatRequest) (*agents.ChatResponse, error) {
	if req == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "missing request")
	}

	term, resp, err := a.resolveTerm(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}

	results, err := a.fetcher.Search(ctx, term)
	if err != nil {
		a.log.Errorw("Web search failed", "error", err)
		return agents.Assistant(fmt.Sprintf("Error performing web search: %v", err)), nil
	}

	return agents.Assistant(results), nil
}

// resolveTerm picks the search term from the request or falls back to the
// last term stored for the conversation. A non-nil response means "answer
// immediately without searching".
func (a *Agent) resolveTerm(ctx context.Context, req *agents.ChatRequest) (string, *agents.ChatResponse, error) {
	term := req.Prompt.Content

	var state *session.State
	if a.sessions != nil {
		loaded, err := a.sessions.Get(ctx, req.ConversationID)
		if err != nil {
			a.log.Warnw("Session load failed", "error", err)
			loaded = &session.State{}
		}
		state = loaded
	} else {
		state = &session.State{}
	}

	if term == "" {
		if state.LastSearchTerm == "" {
			a.log.Warn("No search term available for web search")
			return "", agents.Assistant(noTermMessage), nil
		}
		term = state.LastSearchTerm
	} else if a.sessions != nil {
		state.LastSearchTerm = term
		if err := a.sessions.Save(ctx, req.ConversationID, state); err != nil {
			a.log.Warnw("Session save failed", "error", err)
		}
	}

	return term, nil, nil
}

// synthesize asks the model for a natural-language answer built from the
// search snippets.
func (a *Agent) synthesize(ctx context.Context, term, results string) (string, error) {
	resp, err := a.chat.Chat(ctx, ai.ChatRequest{
		Model: a.model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: synthesisSystemPrompt},
			{
				Role: ai.RoleUser,
				Content: fmt.Sprintf(
					"Based on the following search results for the query '%s', provide a concise and informative answer:\n\n%s",
					term, results),
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "synthesize answer")
	}

	return resp.Content(), nil
}
