// Package store provides HistoryStore implementations.
package store

import (
	"context"
	"sync"

	"coffer/internal/history/models"
	id "coffer/pkg/domain"
)

// InMemoryHistoryStore is a thread-safe in-memory HistoryStore. Entries are
// kept in append order per account.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	entries map[id.AccountID][]*models.Entry
}

func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{entries: make(map[id.AccountID][]*models.Entry)}
}

func (s *InMemoryHistoryStore) Append(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries[entry.Account] = append(s.entries[entry.Account], &clone)
	return nil
}

func (s *InMemoryHistoryStore) ListByAccount(_ context.Context, account id.AccountID, limit int) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[account]
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]*models.Entry, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		clone := *all[i]
		out = append(out, &clone)
	}
	return out, nil
}
