// Package locks provides per-key mutual exclusion for operations that must
// not interleave on the same account.
package locks

import "sync"

// Keyed hands out one mutex per key. Entries are created on first use and
// kept for the life of the process; the key space is bounded by the account
// population.
type Keyed struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{m: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the matching unlock.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.m[key]
	if !ok {
		l = new(sync.Mutex)
		k.m[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l.Unlock
}
