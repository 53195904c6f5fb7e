package ai

import (
	"context"

	"golang.org/x/time/rate"

	"morpheus/pkg/errors"
)

// RateLimiter gates outbound provider requests.
type RateLimiter interface {
	// Wait blocks until a request can proceed or the context is cancelled.
	Wait(ctx context.Context) error

	// Allow checks if a request can proceed without blocking.
	Allow() bool

	// Limit returns the current limit in requests per minute.
	Limit() float64
}

// TokenBucketLimiter wraps x/time rate.Limiter with per-minute accounting.
type TokenBucketLimiter struct {
	limiter  *rate.Limiter
	provider ProviderName
}

// NewTokenBucketLimiter creates a limiter for a provider.
// reqPerMinute: maximum requests per minute (e.g., 500 for OpenAI Tier 1)
// burst: maximum burst size (typically 10-20% of rate)
func NewTokenBucketLimiter(provider ProviderName, reqPerMinute float64, burst int) *TokenBucketLimiter {
	if burst <= 0 {
		burst = int(reqPerMinute / 10)
		if burst < 1 {
			burst = 1
		}
	}

	return &TokenBucketLimiter{
		limiter:  rate.NewLimiter(rate.Limit(reqPerMinute/60.0), burst),
		provider: provider,
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(errors.ErrRateLimited, "provider %s: %v", l.provider, err)
	}
	return nil
}

// Allow reports whether a request can proceed right now.
func (l *TokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit returns the configured limit in requests per minute.
func (l *TokenBucketLimiter) Limit() float64 {
	return float64(l.limiter.Limit()) * 60.0
}

// NoopLimiter never blocks. Used when rate limiting is disabled and in tests.
type NoopLimiter struct{}

func (NoopLimiter) Wait(ctx context.Context) error { return nil }
func (NoopLimiter) Allow() bool                    { return true }
func (NoopLimiter) Limit() float64                 { return 0 }
