// Package store provides VaultStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"coffer/internal/vault/models"
	id "coffer/pkg/domain"
)

type vaultKey struct {
	account id.AccountID
	vaultID id.VaultID
}

// InMemoryVaultStore is a thread-safe in-memory VaultStore for tests and
// single-node deployments. The id counter is tracked per account and never
// rewinds, so closed vault ids stay retired.
type InMemoryVaultStore struct {
	mu       sync.RWMutex
	vaults   map[vaultKey]*models.Vault
	counters map[id.AccountID]id.VaultID
}

func NewInMemoryVaultStore() *InMemoryVaultStore {
	return &InMemoryVaultStore{
		vaults:   make(map[vaultKey]*models.Vault),
		counters: make(map[id.AccountID]id.VaultID),
	}
}

func (s *InMemoryVaultStore) Get(_ context.Context, account id.AccountID, vaultID id.VaultID) (*models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vault, ok := s.vaults[vaultKey{account, vaultID}]
	if !ok {
		return nil, nil
	}
	clone := *vault
	return &clone, nil
}

func (s *InMemoryVaultStore) Put(_ context.Context, vault *models.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *vault
	s.vaults[vaultKey{vault.Account, vault.ID}] = &clone
	return nil
}

func (s *InMemoryVaultStore) List(_ context.Context, account id.AccountID) ([]*models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Vault
	for key, vault := range s.vaults {
		if key.account != account {
			continue
		}
		clone := *vault
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryVaultStore) CountOpen(_ context.Context, account id.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key, vault := range s.vaults {
		if key.account == account && vault.Open() {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryVaultStore) NextID(_ context.Context, account id.AccountID) (id.VaultID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[account]++
	return s.counters[account], nil
}
