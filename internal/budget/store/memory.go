// Package store provides BudgetStore implementations.
package store

import (
	"context"
	"sync"

	"coffer/internal/budget/models"
	id "coffer/pkg/domain"
)

// InMemoryBudgetStore is a thread-safe in-memory BudgetStore for tests and
// single-node deployments.
type InMemoryBudgetStore struct {
	mu      sync.RWMutex
	configs map[id.AccountID]*models.Config
}

func NewInMemoryBudgetStore() *InMemoryBudgetStore {
	return &InMemoryBudgetStore{configs: make(map[id.AccountID]*models.Config)}
}

func (s *InMemoryBudgetStore) Get(_ context.Context, account id.AccountID) (*models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[account]
	if !ok {
		return nil, nil
	}
	clone := *config
	return &clone, nil
}

func (s *InMemoryBudgetStore) Put(_ context.Context, config *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *config
	s.configs[config.Account] = &clone
	return nil
}

func (s *InMemoryBudgetStore) Delete(_ context.Context, account id.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[account]; !ok {
		return false, nil
	}
	delete(s.configs, account)
	return true, nil
}
