package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	now := start
	l := New()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestCheckDeniesOverLimit(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1000, 0))

	for i := 0; i < 3; i++ {
		d := l.Check("k", 3, 10*time.Second)
		require.True(t, d.Allowed, "call %d should be allowed", i+1)
		require.Equal(t, 3-(i+1), d.Remaining)
	}

	d := l.Check("k", 3, 10*time.Second)
	require.False(t, d.Allowed)
	require.GreaterOrEqual(t, d.RetryAfterMs, int64(0))
	require.LessOrEqual(t, d.RetryAfterMs, int64(10_000))
}

func TestCheckWindowReset(t *testing.T) {
	l, now := newTestLimiter(time.Unix(1000, 0))

	for i := 0; i < 2; i++ {
		l.Check("k", 2, 5*time.Second)
	}
	require.False(t, l.Check("k", 2, 5*time.Second).Allowed)

	*now = now.Add(5 * time.Second)
	d := l.Check("k", 2, 5*time.Second)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining, "fresh window should start at count 1")
}

func TestCheckRetryAfterShrinks(t *testing.T) {
	l, now := newTestLimiter(time.Unix(1000, 0))

	l.Check("k", 1, 10*time.Second)
	*now = now.Add(7 * time.Second)
	d := l.Check("k", 1, 10*time.Second)
	require.False(t, d.Allowed)
	require.Equal(t, int64(3000), d.RetryAfterMs)
}

func TestCheckClampsInputs(t *testing.T) {
	l, now := newTestLimiter(time.Unix(1000, 0))

	// limit 0 behaves as limit 1.
	require.True(t, l.Check("a", 0, time.Minute).Allowed)
	require.False(t, l.Check("a", 0, time.Minute).Allowed)

	// window below 1s behaves as 1s.
	l.Check("b", 1, time.Millisecond)
	*now = now.Add(500 * time.Millisecond)
	require.False(t, l.Check("b", 1, time.Millisecond).Allowed)
	*now = now.Add(501 * time.Millisecond)
	require.True(t, l.Check("b", 1, time.Millisecond).Allowed)
}

func TestCheckKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(1000, 0))

	require.True(t, l.Check("a", 1, time.Minute).Allowed)
	require.False(t, l.Check("a", 1, time.Minute).Allowed)
	require.True(t, l.Check("b", 1, time.Minute).Allowed)
}

func TestCheckConcurrentAccounting(t *testing.T) {
	// 8 goroutines hammer 4 keys; each key gets exactly 400 hits and the
	// window never rolls, so exactly limit hits per key may pass no matter
	// how the goroutines interleave.
	l := New()
	keys := [...]string{"a", "b", "c", "d"}
	const (
		workers   = 8
		perWorker = 200
		limit     = 50
	)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if l.Check(keys[(w+i)%len(keys)], limit, time.Hour).Allowed {
					allowed.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, int64(limit*len(keys)), allowed.Load())
	require.Equal(t, len(keys), l.Len())
}

func TestGCPurgesStaleBuckets(t *testing.T) {
	l, now := newTestLimiter(time.Unix(1000, 0))

	for i := 0; i <= gcTableSize; i++ {
		l.Check(fmt.Sprintf("k%d", i), 1, time.Minute)
	}
	require.Equal(t, gcTableSize+1, l.Len())

	// Everything is now stale; next check triggers the purge.
	*now = now.Add(gcStaleAfter + time.Second)
	l.Check("fresh", 1, time.Minute)
	require.Equal(t, 1, l.Len())
}
