package fxrates

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a minimum spacing between consecutive outbound
// fetches for one Manager instance. Unlike a per-domain limiter, this is
// scoped to whichever Manager owns it: two Managers running on distinct
// goroutines (a scheduled sweep and a retry) each pace their own requests
// independently, so the spacing is per in-flight job, not process-wide.
//
// Backed by golang.org/x/time/rate: a single-token bucket refilling at
// 1/delay per second reproduces "at most one request every delay, first
// request free" without hand-rolled timer bookkeeping.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter enforcing the given minimum delay
// between calls to Wait.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	if delay <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the limiter's token bucket allows another request, or
// until ctx is cancelled. The bucket starts full, so the first call on a
// fresh limiter never waits.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
