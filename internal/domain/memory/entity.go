package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Memory is a stored conversational exchange with its vector embedding,
// used by the general-purpose agent for context retrieval.
type Memory struct {
	ID             uuid.UUID `db:"id"`
	ConversationID string    `db:"conversation_id"`
	AgentName      string    `db:"agent_name"`

	Content string `db:"content"`

	// Embedding metadata; model name is kept so vectors from different
	// embedding models are never mixed in one search.
	Embedding           pgvector.Vector `db:"embedding"`
	EmbeddingModel      string          `db:"embedding_model"`
	EmbeddingDimensions int             `db:"embedding_dimensions"`

	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt *time.Time `db:"expires_at"` // nil means never expires
}
