package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"morpheus/internal/adapters/ai"
	"morpheus/internal/adapters/embeddings"
	"morpheus/internal/agents"
	"morpheus/internal/domain/memory"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

const systemPrompt = "You are a helpful general purpose assistant. Use the provided context from " +
	"earlier conversations when it is relevant, and say so when it is not."

// contextLimit bounds how many stored memories are retrieved per request.
const contextLimit = 5

// memoryTTL bounds how long conversational memories are kept.
const memoryTTL = 30 * 24 * time.Hour

// Agent is the general purpose, context-based fallback agent. It retrieves
// semantically similar past exchanges and answers with them as context.
type Agent struct {
	name     string
	chat     ai.ChatProvider
	model    string
	embedder embeddings.Provider
	memories memory.Repository
	log      *logger.Logger
}

var _ agents.Agent = (*Agent)(nil)

// New creates the RAG agent. The memory repository is optional; without it
// the agent degrades to a plain chat completion.
func New(desc agents.Descriptor, chat ai.ChatProvider, model string, embedder embeddings.Provider, memories memory.Repository) (*Agent, error) {
	if chat == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "rag agent requires a chat provider")
	}

	return &Agent{
		name:     desc.Name,
		chat:     chat,
		model:    model,
		embedder: embedder,
		memories: memories,
		log:      logger.Get().With("agent", desc.Name),
	}, nil
}

// Name returns the registry key.
func (a *Agent) Name() string { return a.name }

// Chat answers the prompt with retrieved context and records the exchange.
func (a *Agent) Chat(ctx context.Context, req *agents.ChatRequest) (*agents.ChatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var embedding []float32
	contextBlock := ""

	if a.embedder != nil && a.memories != nil {
		var err error
		embedding, err = a.embedder.GenerateEmbedding(ctx, req.Prompt.Content)
		if err != nil {
			// Retrieval is best-effort; answer without context.
			a.log.Warnw("Embedding failed, answering without context", "error", err)
		} else {
			contextBlock = a.retrieveContext(ctx, embedding)
		}
	}

	messages := []ai.Message{{Role: ai.RoleSystem, Content: systemPrompt}}
	if contextBlock != "" {
		messages = append(messages, ai.Message{
			Role:    ai.RoleSystem,
			Content: "Context from earlier conversations:\n" + contextBlock,
		})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.Prompt.Content})

	resp, err := a.chat.Chat(ctx, ai.ChatRequest{
		Model:    a.model,
		Messages: messages,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rag completion")
	}

	answer := resp.Content()
	a.remember(ctx, req, embedding, answer)

	return agents.Assistant(answer), nil
}

// retrieveContext finds similar stored exchanges and formats them.
func (a *Agent) retrieveContext(ctx context.Context, embedding []float32) string {
	found, err := a.memories.SearchSimilar(ctx, pgvector.NewVector(embedding), a.embedder.Name(), contextLimit)
	if err != nil {
		a.log.Warnw("Memory search failed", "error", err)
		return ""
	}

	var parts []string
	for _, m := range found {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// remember stores the exchange with its prompt embedding. Failures are
// logged, never surfaced to the user.
func (a *Agent) remember(ctx context.Context, req *agents.ChatRequest, embedding []float32, answer string) {
	if a.memories == nil || len(embedding) == 0 {
		return
	}

	expires := time.Now().UTC().Add(memoryTTL)
	m := &memory.Memory{
		ID:                  uuid.New(),
		ConversationID:      req.ConversationID,
		AgentName:           a.name,
		Content:             fmt.Sprintf("User: %s\nAssistant: %s", req.Prompt.Content, answer),
		Embedding:           pgvector.NewVector(embedding),
		EmbeddingModel:      a.embedder.Name(),
		EmbeddingDimensions: len(embedding),
		CreatedAt:           time.Now().UTC(),
		ExpiresAt:           &expires,
	}

	if err := a.memories.Store(ctx, m); err != nil {
		a.log.Warnw("Memory store failed", "error", err)
	}
}
