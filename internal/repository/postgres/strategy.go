package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"morpheus/internal/domain/dca"
	"morpheus/pkg/errors"
)

// Compile-time check
var _ dca.Repository = (*StrategyRepository)(nil)

// StrategyRepository implements dca.Repository using PostgreSQL
type StrategyRepository struct {
	db *sqlx.DB
}

// NewStrategyRepository creates a new strategy repository
func NewStrategyRepository(db *sqlx.DB) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// Create inserts a new strategy
func (r *StrategyRepository) Create(ctx context.Context, s *dca.Strategy) error {
	query := `
		INSERT INTO dca_strategies (
			id, token_address, amount, interval_type, total_periods,
			min_price, max_price, max_slippage, gasless,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12
		)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TokenAddress, s.Amount, s.IntervalType, s.TotalPeriods,
		s.MinPrice, s.MaxPrice, s.MaxSlippage, s.Gasless,
		s.Status, s.CreatedAt, s.UpdatedAt,
	)

	if err != nil {
		return errors.Wrap(err, "failed to create strategy")
	}

	return nil
}

// GetByID retrieves a strategy by ID
func (r *StrategyRepository) GetByID(ctx context.Context, id uuid.UUID) (*dca.Strategy, error) {
	var s dca.Strategy

	query := `
		SELECT id, token_address, amount, interval_type, total_periods,
			   min_price, max_price, max_slippage, gasless,
			   status, created_at, updated_at
		FROM dca_strategies
		WHERE id = $1`

	err := r.db.GetContext(ctx, &s, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "strategy not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get strategy")
	}

	return &s, nil
}

// List returns strategies, newest first
func (r *StrategyRepository) List(ctx context.Context, limit int) ([]*dca.Strategy, error) {
	var strategies []*dca.Strategy

	query := `
		SELECT id, token_address, amount, interval_type, total_periods,
			   min_price, max_price, max_slippage, gasless,
			   status, created_at, updated_at
		FROM dca_strategies
		ORDER BY created_at DESC
		LIMIT $1`

	err := r.db.SelectContext(ctx, &strategies, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list strategies")
	}

	return strategies, nil
}

// UpdateStatus transitions a strategy to a new status
func (r *StrategyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status dca.Status) error {
	query := `
		UPDATE dca_strategies
		SET status = $2, updated_at = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "failed to update strategy status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "strategy not found")
	}

	return nil
}
