package ratelimit

import (
	"sync"
	"time"
)

const (
	minLimit  = 1
	minWindow = time.Second

	// Housekeeping: once the table holds more than gcTableSize buckets,
	// every check first purges buckets whose window started more than
	// gcStaleAfter ago. This bounds memory under unbounded key cardinality
	// without a background task.
	gcTableSize  = 5000
	gcStaleAfter = 10 * time.Minute
)

// Decision is the outcome of a single Check call.
//
// RetryAfterMs is only meaningful when Allowed is false; it is always in
// [0, window].
type Decision struct {
	Allowed      bool
	Remaining    int
	RetryAfterMs int64
}

type bucket struct {
	windowStart time.Time
	count       int
}

// Limiter is a fixed-window rate limiter keyed by arbitrary strings.
//
// Construct one instance per process and share it by handle; tests build a
// fresh instance each. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	now func() time.Time // overridable in tests
}

func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Check records one hit for key and reports whether it fits within limit
// hits per window. Out-of-range inputs are clamped, not rejected: limit is
// raised to 1 and window to 1s.
func (l *Limiter) Check(key string, limit int, window time.Duration) Decision {
	if limit < minLimit {
		limit = minLimit
	}
	if window < minWindow {
		window = minWindow
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.gcLocked(now)

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.windowStart.Add(window)) {
		l.buckets[key] = &bucket{windowStart: now, count: 1}
		return Decision{Allowed: true, Remaining: limit - 1}
	}

	b.count++
	if b.count > limit {
		retry := window - now.Sub(b.windowStart)
		if retry < 0 {
			retry = 0
		}
		return Decision{RetryAfterMs: retry.Milliseconds()}
	}
	return Decision{Allowed: true, Remaining: limit - b.count}
}

// Len reports the current bucket count (for tests and diagnostics).
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) gcLocked(now time.Time) {
	if len(l.buckets) <= gcTableSize {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.windowStart) > gcStaleAfter {
			delete(l.buckets, k)
		}
	}
}
