package provider

import (
	"context"
	"sync"
	"time"

	"terminalcoin/internal/apierr"
)

// RateLimiter enforces a sliding call budget: at most maxCalls
// admissions inside any trailing period. One instance is shared by all
// requests to a single upstream host.
type RateLimiter struct {
	mu       sync.Mutex
	maxCalls int
	period   time.Duration
	calls    []time.Time // admitted call timestamps, oldest first
}

// NewRateLimiter creates a limiter admitting maxCalls per period.
func NewRateLimiter(maxCalls int, period time.Duration) (*RateLimiter, error) {
	if maxCalls <= 0 {
		return nil, apierr.New(apierr.KindConfiguration, "ratelimiter.new", "max calls must be positive, got %d", maxCalls)
	}
	if period <= 0 {
		return nil, apierr.New(apierr.KindConfiguration, "ratelimiter.new", "period must be positive, got %s", period)
	}
	return &RateLimiter{
		maxCalls: maxCalls,
		period:   period,
		calls:    make([]time.Time, 0, maxCalls),
	}, nil
}

// Wait blocks until the call is admitted or ctx is cancelled. Calls are
// never rejected: when the window is full the caller sleeps until the
// oldest admission ages out, then retries.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		r.prune(now)
		if len(r.calls) < r.maxCalls {
			r.calls = append(r.calls, now)
			r.mu.Unlock()
			return nil
		}
		wait := r.calls[0].Add(r.period).Sub(now)
		r.mu.Unlock()

		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// prune drops timestamps older than period. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.period)
	idx := 0
	for idx < len(r.calls) && !r.calls[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		r.calls = append(r.calls[:0], r.calls[idx:]...)
	}
}

// window returns the current admitted-call count. Test hook.
func (r *RateLimiter) window() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(time.Now())
	return len(r.calls)
}
