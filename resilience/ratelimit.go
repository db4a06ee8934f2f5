package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the token bucket.
type RateLimiterConfig struct {
	// Rate is the number of tokens added per second.
	// Default: 10
	Rate float64

	// Burst is the bucket size.
	// Default: 20
	Burst int

	// MaxWait bounds how long Wait blocks for a token.
	// Default: 1 second
	MaxWait time.Duration
}

// RateLimiter is a token bucket. healthops puts one in front of the HTTP
// health endpoints so a scrape storm cannot fan out into dependency calls.
type RateLimiter struct {
	config RateLimiterConfig

	mu          sync.Mutex
	tokens      float64
	lastRefresh time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 10
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &RateLimiter{
		config:      config,
		tokens:      float64(config.Burst),
		lastRefresh: time.Now(),
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	return rl.AllowN(1)
}

// AllowN takes n tokens if available.
func (rl *RateLimiter) AllowN(n int) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens < float64(n) {
		return false
	}
	rl.tokens -= float64(n)
	return true
}

// Wait blocks until a token is available, MaxWait passes, or ctx ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rl.Allow() {
		return nil
	}

	wait := rl.RetryAfter()
	if wait > rl.config.MaxWait {
		wait = rl.config.MaxWait
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if rl.Allow() {
			return nil
		}
		return ErrRateLimitExceeded
	}
}

// RetryAfter estimates how long until one token is available.
func (rl *RateLimiter) RetryAfter() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()
	if rl.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - rl.tokens) / rl.config.Rate * float64(time.Second))
}

// Tokens returns the number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset refills the bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Burst)
	rl.lastRefresh = time.Now()
}

func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	rl.tokens += now.Sub(rl.lastRefresh).Seconds() * rl.config.Rate
	rl.lastRefresh = now

	if rl.tokens > float64(rl.config.Burst) {
		rl.tokens = float64(rl.config.Burst)
	}
}
