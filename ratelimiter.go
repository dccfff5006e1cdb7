package qerasure

import (
	"context"
	"sync"
	"time"
)

/*
RateLimiter is a token bucket that paces device submissions. Hardware queues
commonly cap how many tasks a client may create per interval; the driver asks
the limiter before every attempt and waits while the bucket is empty.

A full bucket allows a burst of maxTokens submissions, after which one token
comes back every refillRate.
*/
type RateLimiter struct {
	tokens     int           // Current number of available tokens
	maxTokens  int           // Maximum token capacity
	refillRate time.Duration // Time between token replenishments
	lastRefill time.Time     // Last time tokens were added
	mu         sync.Mutex
}

// NewRateLimiter returns a limiter that starts with a full bucket.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}

	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Limit consumes a token if one is available and reports whether the caller must hold off.
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}

	return true
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	for rl.Limit() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.untilNext()):
		}
	}

	return nil
}

func (rl *RateLimiter) untilNext() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wait := time.Until(rl.lastRefill.Add(rl.refillRate))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}

	return wait
}

// refill assumes the caller holds the mutex.
func (rl *RateLimiter) refill() {
	if rl.refillRate <= 0 {
		rl.tokens = rl.maxTokens
		return
	}

	elapsed := time.Since(rl.lastRefill)
	tokensToAdd := int64(elapsed / rl.refillRate)

	if tokensToAdd > 0 {
		rl.tokens = min(rl.maxTokens, rl.tokens+int(tokensToAdd))
		// Only move lastRefill forward by the number of complete periods
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)
	}
}
