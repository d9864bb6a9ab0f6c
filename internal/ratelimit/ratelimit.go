// Package ratelimit spaces out calls to a search provider.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobradius/internal/model"
)

// Limiter enforces a minimum delay between consecutive provider requests.
// It is safe for concurrent use; waiting callers are served one per interval.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter that allows one request every minDelay.
// A non-positive minDelay disables limiting.
func NewLimiter(minDelay time.Duration) *Limiter {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Limiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next request may go out. If ctx ends first, or its
// deadline would pass before a slot frees up, the error wraps the context error.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("rate limiter wait: %w", ctxErr)
		}
		// rate refuses up front when the deadline is too close to wait for.
		return fmt.Errorf("rate limiter wait: %v: %w", err, context.DeadlineExceeded)
	}
	return nil
}

// RateLimitedProvider is a decorator that waits for the limiter before
// delegating to the wrapped SearchProvider.
type RateLimitedProvider struct {
	inner   model.SearchProvider
	limiter *Limiter
}

// NewRateLimitedProvider wraps a SearchProvider with rate limiting. Providers
// that hit the same upstream should share one Limiter.
func NewRateLimitedProvider(inner model.SearchProvider, limiter *Limiter) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
	}
}

// Search waits for the limiter, then delegates to the wrapped provider.
func (p *RateLimitedProvider) Search(ctx context.Context, params model.SearchParams) ([]model.RawRecord, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Search(ctx, params)
}
