package auth

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces interactive login attempts
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows one attempt per interval after an initial burst.
// A non-positive interval disables pacing.
func NewRateLimiter(interval time.Duration, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until the next attempt is allowed
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
