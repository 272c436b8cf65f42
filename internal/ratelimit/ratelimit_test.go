package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, window time.Duration, max int) (*Limiter, *time.Time) {
	t.Helper()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(window, max)
	t.Cleanup(l.Stop)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestLimiterAdmitsUpToMax(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 30)

	for i := 0; i < 30; i++ {
		res := l.Check("scan:1.2.3.4")
		require.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 30-(i+1), res.Remaining)
	}

	res := l.Check("scan:1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestLimiterRejectedRequestsDoNotIncrement(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 2)

	l.Check("k")
	l.Check("k")
	for i := 0; i < 5; i++ {
		res := l.Check("k")
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	l, clock := newTestLimiter(t, time.Minute, 2)

	l.Check("k")
	l.Check("k")
	require.False(t, l.Check("k").Allowed)

	*clock = clock.Add(61 * time.Second)

	res := l.Check("k")
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, time.Minute, 1)

	require.True(t, l.Check("scan:a").Allowed)
	require.False(t, l.Check("scan:a").Allowed)
	assert.True(t, l.Check("scan:b").Allowed)
}

func TestLimiterBoundaryBurstAdmitsTwiceMax(t *testing.T) {
	// Fixed windows admit up to 2N across a boundary; pin that behavior.
	l, clock := newTestLimiter(t, time.Minute, 3)

	for i := 0; i < 3; i++ {
		require.True(t, l.Check("k").Allowed)
	}
	*clock = clock.Add(61 * time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Check("k").Allowed, "post-boundary request %d", i+1)
	}
}

func TestLimiterConcurrentChecks(t *testing.T) {
	l := New(time.Minute, 100)
	defer l.Stop()

	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				l.Check(fmt.Sprintf("key-%d", w%2))
			}
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}

	// After 200 checks per key with max 100, both keys must be exhausted.
	assert.False(t, l.Check("key-0").Allowed)
	assert.False(t, l.Check("key-1").Allowed)
}
