package store

import (
	"context"
	"sync"

	"coffer/internal/authz/models"
	id "coffer/pkg/domain"
)

type key struct {
	account  id.AccountID
	delegate id.AccountID
}

// InMemoryDelegateStore keeps delegate grants in a map. Records are cloned on
// the way in and out so callers can never mutate stored state directly.
type InMemoryDelegateStore struct {
	mu     sync.RWMutex
	grants map[key]*models.DelegateGrant
}

func NewInMemoryDelegateStore() *InMemoryDelegateStore {
	return &InMemoryDelegateStore{grants: make(map[key]*models.DelegateGrant)}
}

func (s *InMemoryDelegateStore) Get(_ context.Context, account, delegate id.AccountID) (*models.DelegateGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[key{account, delegate}]
	if !ok {
		return nil, nil
	}
	clone := *grant
	return &clone, nil
}

func (s *InMemoryDelegateStore) Put(_ context.Context, grant *models.DelegateGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *grant
	s.grants[key{grant.Account, grant.Delegate}] = &clone
	return nil
}

func (s *InMemoryDelegateStore) Delete(_ context.Context, account, delegate id.AccountID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{account, delegate}
	if _, ok := s.grants[k]; !ok {
		return false, nil
	}
	delete(s.grants, k)
	return true, nil
}

func (s *InMemoryDelegateStore) List(_ context.Context, account id.AccountID) ([]*models.DelegateGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DelegateGrant
	for k, grant := range s.grants {
		if k.account == account {
			clone := *grant
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *InMemoryDelegateStore) Count(_ context.Context, account id.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.grants {
		if k.account == account {
			n++
		}
	}
	return n, nil
}
