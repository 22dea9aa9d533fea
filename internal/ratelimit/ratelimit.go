// Package ratelimit provides a per-client token bucket used to protect the
// search endpoint.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter is a keyed token-bucket rate limiter. Each key gets capacity
// tokens refilled evenly over window.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	window   time.Duration
	lastGC   time.Time
}

func New(capacity int, window time.Duration) *Limiter {
	if capacity <= 0 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(capacity),
		window:   window,
		lastGC:   time.Now(),
	}
}

// Allow reports whether the key may proceed and consumes one token if so.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeGC(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}

	refillRate := l.capacity / l.window.Seconds()
	b.tokens += now.Sub(b.lastRefill).Seconds() * refillRate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// maybeGC drops buckets idle for more than two windows. Caller holds l.mu.
func (l *Limiter) maybeGC(now time.Time) {
	if now.Sub(l.lastGC) < l.window {
		return
	}
	cutoff := now.Add(-2 * l.window)
	for key, b := range l.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
	l.lastGC = now
}
