package dca

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "morpheus/internal/domain/dca"
	"morpheus/pkg/errors"
	"morpheus/pkg/logger"
)

// Manager is the strategy-management capability consumed by the DCA agent.
type Manager interface {
	Create(ctx context.Context, params CreateParams) (*domain.Strategy, error)
	Pause(ctx context.Context, strategyID string) (*domain.Strategy, error)
	Resume(ctx context.Context, strategyID string) (*domain.Strategy, error)
	Cancel(ctx context.Context, strategyID string) (*domain.Strategy, error)
	List(ctx context.Context, limit int) ([]*domain.Strategy, error)
}

// CreateParams carries validated-on-entry strategy parameters.
type CreateParams struct {
	TokenAddress string
	Amount       decimal.Decimal
	IntervalType string
	TotalPeriods int
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MaxSlippage  decimal.Decimal
	Gasless      bool
}

// Compile-time check
var _ Manager = (*Service)(nil)

// Service implements strategy management over a repository.
type Service struct {
	repo domain.Repository
	log  *logger.Logger
}

// NewService creates a new DCA strategy service
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.Get().With("component", "dca_service"),
	}
}

// Create validates parameters and persists a new active strategy.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domain.Strategy, error) {
	if err := validateCreate(params); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	strategy := &domain.Strategy{
		ID:           uuid.New(),
		TokenAddress: strings.ToLower(params.TokenAddress),
		Amount:       params.Amount,
		IntervalType: domain.IntervalType(params.IntervalType),
		TotalPeriods: params.TotalPeriods,
		MaxSlippage:  params.MaxSlippage,
		Gasless:      params.Gasless,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if params.MinPrice != nil {
		strategy.MinPrice = decimal.NewNullDecimal(*params.MinPrice)
	}
	if params.MaxPrice != nil {
		strategy.MaxPrice = decimal.NewNullDecimal(*params.MaxPrice)
	}

	if err := s.repo.Create(ctx, strategy); err != nil {
		return nil, errors.Wrap(errors.ErrExecution, err.Error())
	}

	s.log.Infow("Strategy created", "strategy_id", strategy.ID, "token", strategy.TokenAddress)
	return strategy, nil
}

// Pause moves an active strategy to paused.
func (s *Service) Pause(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	return s.transition(ctx, strategyID, domain.StatusPaused, domain.StatusActive)
}

// Resume moves a paused strategy back to active.
func (s *Service) Resume(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	return s.transition(ctx, strategyID, domain.StatusActive, domain.StatusPaused)
}

// Cancel terminates an active or paused strategy.
func (s *Service) Cancel(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	return s.transition(ctx, strategyID, domain.StatusCancelled, domain.StatusActive, domain.StatusPaused)
}

// List returns recent strategies.
func (s *Service) List(ctx context.Context, limit int) ([]*domain.Strategy, error) {
	if limit <= 0 {
		limit = 20
	}
	strategies, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrExecution, err.Error())
	}
	return strategies, nil
}

// transition loads a strategy, checks the current status is one of the
// allowed source states and persists the new status.
func (s *Service) transition(ctx context.Context, strategyID string, target domain.Status, from ...domain.Status) (*domain.Strategy, error) {
	id, err := uuid.Parse(strategyID)
	if err != nil {
		return nil, errors.NewValidationError("strategy_id", "must be a valid UUID")
	}

	strategy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrapf(errors.ErrStrategyNotFound, "strategy %s", strategyID)
		}
		return nil, errors.Wrap(errors.ErrExecution, err.Error())
	}

	allowed := false
	for _, status := range from {
		if strategy.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.Wrapf(errors.ErrExecution,
			"strategy %s is %s and cannot move to %s", strategyID, strategy.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrapf(errors.ErrStrategyNotFound, "strategy %s", strategyID)
		}
		return nil, errors.Wrap(errors.ErrExecution, err.Error())
	}

	strategy.Status = target
	s.log.Infow("Strategy transitioned", "strategy_id", strategyID, "status", target)
	return strategy, nil
}

func validateCreate(params CreateParams) error {
	if strings.TrimSpace(params.TokenAddress) == "" {
		return errors.NewValidationError("token_address", "is required")
	}
	if !strings.HasPrefix(params.TokenAddress, "0x") || len(params.TokenAddress) != 42 {
		return errors.NewValidationError("token_address", "must be a 0x-prefixed 20-byte address")
	}
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.NewValidationError("amount", "must be greater than zero")
	}
	if !domain.IntervalType(params.IntervalType).Valid() {
		return errors.NewValidationError("interval_type", "must be one of hourly, daily, weekly, monthly")
	}
	if params.TotalPeriods < 0 {
		return errors.NewValidationError("total_periods", "cannot be negative")
	}
	if params.MinPrice != nil && params.MinPrice.LessThanOrEqual(decimal.Zero) {
		return errors.NewValidationError("min_price", "must be greater than zero")
	}
	if params.MaxPrice != nil && params.MaxPrice.LessThanOrEqual(decimal.Zero) {
		return errors.NewValidationError("max_price", "must be greater than zero")
	}
	if params.MinPrice != nil && params.MaxPrice != nil && params.MinPrice.GreaterThanOrEqual(*params.MaxPrice) {
		return errors.NewValidationError("min_price", "must be below max_price")
	}
	if params.MaxSlippage.LessThanOrEqual(decimal.Zero) || params.MaxSlippage.GreaterThan(decimal.NewFromInt(1)) {
		return errors.NewValidationError("max_slippage", "must be in (0, 1]")
	}
	return nil
}
