// Package ratelimit implements a keyed sliding-window rate limiter.
//
// It is a best-effort, single-process guard for sensitive actions such
// as posting a chat message or regenerating place suggestions. It keeps
// no state across restarts and is not a distributed limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks recent consume timestamps per key and rejects a
// consume once the count inside the trailing window reaches the limit.
// Buckets are created on first use and pruned lazily on access; a
// rejected consume records nothing.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	now     func() time.Time // injectable clock for tests
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// NewWithClock creates a limiter using the given clock.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		buckets: make(map[string][]time.Time),
		now:     now,
	}
}

// Consume reports whether an action keyed by key is admitted under
// limit events per window. On admission the current timestamp is
// recorded against the key; on rejection the call is a no-op.
func (l *Limiter) Consume(key string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	bucket := l.buckets[key]

	// Trim entries that fell out of the window.
	n := 0
	for _, t := range bucket {
		if t.After(cutoff) {
			bucket[n] = t
			n++
		}
	}
	bucket = bucket[:n]

	if len(bucket) >= limit {
		l.buckets[key] = bucket
		return false
	}

	l.buckets[key] = append(bucket, now)
	return true
}

// ResetAll clears every bucket. Intended for test isolation.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string][]time.Time)
}
