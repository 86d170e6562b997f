// Package ratelimit throttles query requests per client with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket for one client. Tokens refill continuously at
// rate per second up to capacity, and every allowed request takes one.
type Limiter struct {
	tokens   float64
	lastTime time.Time
	rate     float64
	capacity float64

	mu sync.Mutex
}

// Rate controls how many requests per second are allowed
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// NewLimiter creates a full bucket.
func NewLimiter(rate Rate, now time.Time) *Limiter {
	return &Limiter{
		tokens:   float64(rate.Burst),
		lastTime: now,
		rate:     rate.RequestsPerSecond,
		capacity: float64(rate.Burst),
	}
}

// Allow refills the bucket for the time elapsed since the previous call and
// takes a token if one is available.
func (l *Limiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elapsed := now.Sub(l.lastTime).Seconds(); elapsed > 0 {
		l.tokens += elapsed * l.rate
	}
	l.lastTime = now

	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// idleSince reports whether the limiter has not been used since cutoff.
func (l *Limiter) idleSince(cutoff time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastTime.Before(cutoff)
}
