package dca

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists DCA strategies
type Repository interface {
	// Create inserts a new strategy
	Create(ctx context.Context, s *Strategy) error

	// GetByID retrieves a strategy by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Strategy, error)

	// List returns all strategies, newest first
	List(ctx context.Context, limit int) ([]*Strategy, error)

	// UpdateStatus transitions a strategy to a new status
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
