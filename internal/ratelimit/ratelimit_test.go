package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(l *Limiter, start time.Time) *time.Time {
	now := start
	l.now = func() time.Time { return now }
	return &now
}

func TestAllow(t *testing.T) {
	t.Run("burst then refuse", func(t *testing.T) {
		l := New(60, 2)
		fixedClock(l, time.Unix(1_700_000_000, 0))

		ok1, _ := l.Allow("a")
		ok2, _ := l.Allow("a")
		ok3, retry := l.Allow("a")

		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.False(t, ok3)
		assert.InDelta(t, time.Second, retry, float64(10*time.Millisecond))
	})

	t.Run("clients are independent", func(t *testing.T) {
		l := New(60, 1)
		fixedClock(l, time.Unix(1_700_000_000, 0))

		okA, _ := l.Allow("a")
		okB, _ := l.Allow("b")

		assert.True(t, okA)
		assert.True(t, okB)
	})

	t.Run("tokens refill", func(t *testing.T) {
		l := New(60, 1)
		now := fixedClock(l, time.Unix(1_700_000_000, 0))

		ok, _ := l.Allow("a")
		require.True(t, ok)
		ok, _ = l.Allow("a")
		require.False(t, ok)

		*now = now.Add(time.Second)
		ok, _ = l.Allow("a")
		assert.True(t, ok)
	})

	t.Run("refusals do not consume tokens", func(t *testing.T) {
		l := New(60, 1)
		now := fixedClock(l, time.Unix(1_700_000_000, 0))

		l.Allow("a")
		for i := 0; i < 5; i++ {
			l.Allow("a")
		}
		*now = now.Add(time.Second)

		ok, _ := l.Allow("a")
		assert.True(t, ok)
	})

	t.Run("disabled", func(t *testing.T) {
		l := New(0, 1)

		for i := 0; i < 100; i++ {
			ok, _ := l.Allow("a")
			require.True(t, ok)
		}
	})
}

func TestStatsAndSweep(t *testing.T) {
	l := New(60, 1)
	now := fixedClock(l, time.Unix(1_700_000_000, 0))

	l.Allow("a")
	l.Allow("a")
	l.Allow("b")

	stats := l.Stats()
	assert.Equal(t, int64(2), stats.Allowed)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, 2, stats.Clients)

	*now = now.Add(5 * time.Minute)
	l.Allow("b")
	*now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Stats().Clients)
}

func TestConcurrentAllow(t *testing.T) {
	l := New(60, 10)
	fixedClock(l, time.Unix(1_700_000_000, 0))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Allow("shared")
		}()
	}
	wg.Wait()

	stats := l.Stats()
	assert.Equal(t, int64(10), stats.Allowed)
	assert.Equal(t, int64(40), stats.Rejected)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, RetryAfterSeconds(0))
	assert.Equal(t, 1, RetryAfterSeconds(300*time.Millisecond))
	assert.Equal(t, 3, RetryAfterSeconds(2100*time.Millisecond))
}
