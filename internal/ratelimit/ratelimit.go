// Package ratelimit applies a token bucket per client key.
package ratelimit

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Stats counts limiter decisions.
type Stats struct {
	Allowed  int64
	Rejected int64
	Clients  int
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	allowed  atomic.Int64
	rejected atomic.Int64
}

// New allows perMinute requests per client per minute with the given burst.
// A non-positive perMinute disables limiting.
func New(perMinute, burst int) *Limiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow consumes a token for key. When refused, retryAfter is how long until
// a token is available.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	c, found := l.clients[key]
	if !found {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	r := c.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	l.mu.Unlock()

	if delay > 0 {
		l.rejected.Add(1)
		return false, delay
	}
	l.allowed.Add(1)
	return true, 0
}

// RetryAfterSeconds rounds d up to whole seconds, minimum one.
func RetryAfterSeconds(d time.Duration) int {
	return int(math.Max(1, math.Ceil(d.Seconds())))
}

// Sweep drops clients idle for longer than the idle TTL.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	n := len(l.clients)
	l.mu.Unlock()
	return Stats{Allowed: l.allowed.Load(), Rejected: l.rejected.Load(), Clients: n}
}
