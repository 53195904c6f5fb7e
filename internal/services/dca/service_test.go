package dca

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "morpheus/internal/domain/dca"
	"morpheus/pkg/errors"
)

// mockRepo is an in-memory strategy repository.
type mockRepo struct {
	strategies map[uuid.UUID]*domain.Strategy
	createErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{strategies: make(map[uuid.UUID]*domain.Strategy)}
}

func (m *mockRepo) Create(_ context.Context, s *domain.Strategy) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.strategies[s.ID] = s
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Strategy, error) {
	s, ok := m.strategies[id]
	if !ok {
		return nil, errors.Wrap(errors.ErrNotFound, id.String())
	}
	copied := *s
	return &copied, nil
}

func (m *mockRepo) List(_ context.Context, limit int) ([]*domain.Strategy, error) {
	var out []*domain.Strategy
	for _, s := range m.strategies {
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) error {
	s, ok := m.strategies[id]
	if !ok {
		return errors.Wrap(errors.ErrNotFound, id.String())
	}
	s.Status = status
	return nil
}

func validParams() CreateParams {
	return CreateParams{
		TokenAddress: "0x1234567890123456789012345678901234567890",
		Amount:       decimal.NewFromInt(100),
		IntervalType: "daily",
		MaxSlippage:  decimal.NewFromFloat(0.01),
	}
}

func TestCreateValid(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	strategy, err := svc.Create(context.Background(), validParams())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, strategy.ID)
	assert.Equal(t, domain.StatusActive, strategy.Status)
	assert.Len(t, repo.strategies, 1)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*CreateParams)
		field  string
	}{
		{"empty token address", func(p *CreateParams) { p.TokenAddress = "" }, "token_address"},
		{"malformed token address", func(p *CreateParams) { p.TokenAddress = "1234" }, "token_address"},
		{"zero amount", func(p *CreateParams) { p.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(p *CreateParams) { p.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"bad interval", func(p *CreateParams) { p.IntervalType = "yearly" }, "interval_type"},
		{"negative periods", func(p *CreateParams) { p.TotalPeriods = -1 }, "total_periods"},
		{"zero slippage", func(p *CreateParams) { p.MaxSlippage = decimal.Zero }, "max_slippage"},
		{"slippage above one", func(p *CreateParams) { p.MaxSlippage = decimal.NewFromInt(2) }, "max_slippage"},
		{"min above max", func(p *CreateParams) {
			min := decimal.NewFromInt(10)
			max := decimal.NewFromInt(5)
			p.MinPrice, p.MaxPrice = &min, &max
		}, "min_price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)

			_, err := svc.Create(context.Background(), params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrValidation))

			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestTransitions(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	strategy, err := svc.Create(context.Background(), validParams())
	require.NoError(t, err)
	id := strategy.ID.String()

	t.Run("pause active", func(t *testing.T) {
		s, err := svc.Pause(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPaused, s.Status)
	})

	t.Run("pause paused fails", func(t *testing.T) {
		_, err := svc.Pause(context.Background(), id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrExecution))
	})

	t.Run("resume paused", func(t *testing.T) {
		s, err := svc.Resume(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, s.Status)
	})

	t.Run("cancel active", func(t *testing.T) {
		s, err := svc.Cancel(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, s.Status)
	})

	t.Run("cancel cancelled fails", func(t *testing.T) {
		_, err := svc.Cancel(context.Background(), id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrExecution))
	})
}

func TestTransitionBadID(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Pause(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestTransitionNotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Cancel(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStrategyNotFound))
}
