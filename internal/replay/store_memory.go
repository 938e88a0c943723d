package replay

import (
	"context"
	"sync"
	"time"
)

// InMemoryGuard keeps first-seen ids in a map with lazy TTL expiry. Suitable
// for single-process deployments; use the Redis guard when running more than
// one replica.
type InMemoryGuard struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	ttl   time.Duration
	clock func() time.Time
}

// NewInMemoryGuard creates a guard retaining ids for ttl.
func NewInMemoryGuard(ttl time.Duration) *InMemoryGuard {
	return &InMemoryGuard{
		seen:  make(map[string]time.Time),
		ttl:   ttl,
		clock: time.Now,
	}
}

// WithClock overrides the clock for tests.
func (g *InMemoryGuard) WithClock(clock func() time.Time) *InMemoryGuard {
	g.clock = clock
	return g
}

func (g *InMemoryGuard) FirstSeen(_ context.Context, txID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	g.expire(now)

	if _, dup := g.seen[txID]; dup {
		return false, nil
	}
	g.seen[txID] = now.Add(g.ttl)
	return true, nil
}

// expire drops entries past their deadline. Called with the lock held.
func (g *InMemoryGuard) expire(now time.Time) {
	for id, deadline := range g.seen {
		if !deadline.After(now) {
			delete(g.seen, id)
		}
	}
}
