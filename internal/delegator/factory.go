package delegator

import (
	"morpheus/internal/adapters/ai"
	"morpheus/internal/adapters/embeddings"
	"morpheus/internal/agents"
	dcaagent "morpheus/internal/agents/dca"
	ragagent "morpheus/internal/agents/rag"
	searchagent "morpheus/internal/agents/search"
	"morpheus/internal/domain/memory"
	dcaservice "morpheus/internal/services/dca"
	"morpheus/internal/services/session"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

// Deps are the shared handles every agent constructor may draw from.
type Deps struct {
	Chat       ai.ChatProvider
	Model      string
	Embeddings embeddings.Provider
	Memories   memory.Repository
	Strategies dcaservice.Manager
	Search     searchagent.Fetcher
	Sessions   *session.Store
}

// newAgent constructs the agent for a descriptor.
func newAgent(desc agents.Descriptor, deps Deps) (agents.Agent, error) {
	switch desc.Type {
	case agents.TypeDCA:
		return dcaagent.New(desc, deps.Chat, deps.Model, deps.Strategies)
	case agents.TypeRealtimeSearch:
		return searchagent.New(desc, deps.Chat, deps.Model, deps.Search, deps.Sessions)
	case agents.TypeRAG:
		return ragagent.New(desc, deps.Chat, deps.Model, deps.Embeddings, deps.Memories)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown agent type %q", desc.Type)
	}
}

// BuildRegistry instantiates every configured agent. A descriptor whose
// construction fails is logged and skipped; the registry may end up smaller
// than configured.
func BuildRegistry(descriptors []agents.Descriptor, deps Deps) *Registry {
	log := logger.Get().With("component", "delegator")
	registry := NewRegistry()

	for _, desc := range descriptors {
		ag, err := newAgent(desc, deps)
		if err != nil {
			log.Errorw("Failed to load agent", "agent", desc.Name, "error", err)
			continue
		}
		registry.add(ag)
		log.Infow("Loaded agent", "agent", desc.Name)
	}

	log.Infof("Delegator initialized with %d agents", registry.Len())
	return registry
}
