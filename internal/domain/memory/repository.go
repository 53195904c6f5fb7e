package memory

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// Repository persists memories and supports vector similarity search
type Repository interface {
	// Store inserts a new memory
	Store(ctx context.Context, m *Memory) error

	// SearchSimilar returns the memories closest to the embedding, filtered
	// by the embedding model that produced it
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, model string, limit int) ([]*Memory, error)

	// DeleteExpired removes expired memories
	DeleteExpired(ctx context.Context) (int64, error)
}
