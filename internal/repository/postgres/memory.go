package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"morpheus/internal/domain/memory"
	"morpheus/pkg/errors"
)

// Compile-time check
var _ memory.Repository = (*MemoryRepository)(nil)

// MemoryRepository implements memory.Repository using sqlx and pgvector
type MemoryRepository struct {
	db *sqlx.DB
}

// NewMemoryRepository creates a new memory repository
func NewMemoryRepository(db *sqlx.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

// Store inserts a new memory
func (r *MemoryRepository) Store(ctx context.Context, m *memory.Memory) error {
	query := `
		INSERT INTO memories (
			id, conversation_id, agent_name, content,
			embedding, embedding_model, embedding_dimensions,
			created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ConversationID, m.AgentName, m.Content,
		m.Embedding, m.EmbeddingModel, m.EmbeddingDimensions,
		m.CreatedAt, m.ExpiresAt,
	)

	if err != nil {
		return errors.Wrap(err, "failed to store memory")
	}

	return nil
}

// SearchSimilar performs semantic search using pgvector cosine distance
func (r *MemoryRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, model string, limit int) ([]*memory.Memory, error) {
	var memories []*memory.Memory

	query := `
		SELECT id, conversation_id, agent_name, content,
			   embedding, embedding_model, embedding_dimensions,
			   created_at, expires_at
		FROM memories
		WHERE embedding_model = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY embedding <=> $1
		LIMIT $3`

	err := r.db.SelectContext(ctx, &memories, query, embedding, model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search memories")
	}

	return memories, nil
}

// DeleteExpired removes expired memories
func (r *MemoryRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE expires_at < NOW()`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired memories")
	}
	return result.RowsAffected()
}
