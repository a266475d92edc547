package leetcode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// errBackoffPastDeadline is returned without waiting when a pending
// backoff ends after the caller's deadline.
var errBackoffPastDeadline = fmt.Errorf("backoff ends after deadline: %w", context.DeadlineExceeded)

// RateLimiter controls the frequency of requests to the upstream API.
type RateLimiter struct {
	limiter *rate.Limiter

	// set when the upstream answered 429
	backoffUntil time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates an outbound limiter.
// rps - requests per second shared by all callers
// burst - allowed burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Wait blocks until the next request is allowed or ctx is done. Like
// rate.Limiter.Wait, it fails at once when the wait would pass ctx's deadline.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	waitUntil := r.backoffUntil
	r.mu.Unlock()

	if time.Now().Before(waitUntil) {
		if deadline, ok := ctx.Deadline(); ok && waitUntil.After(deadline) {
			return errBackoffPastDeadline
		}

		timer := time.NewTimer(time.Until(waitUntil))
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return r.limiter.Wait(ctx)
}

// SetBackoff pauses outbound calls for d, e.g. after an upstream 429.
// A shorter backoff never replaces a longer pending one.
func (r *RateLimiter) SetBackoff(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until := time.Now().Add(d)
	if until.After(r.backoffUntil) {
		r.backoffUntil = until
	}
}
