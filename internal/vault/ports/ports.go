// Package ports defines shared interfaces for the vault module.
package ports

import (
	"context"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/vault/models"
	id "coffer/pkg/domain"
)

// VaultStore persists vault records and the per-account id counter. Stores
// are pure I/O: the state machine lives in the service, and Put commits the
// whole record. NextID draws from a counter that survives vault closure so
// an id is never reused, even after every vault on the account is closed.
type VaultStore interface {
	// Get returns the vault, closed ones included, or nil when the id was
	// never allocated for this account.
	Get(ctx context.Context, account id.AccountID, vaultID id.VaultID) (*models.Vault, error)

	// Put inserts or replaces the vault record.
	Put(ctx context.Context, vault *models.Vault) error

	// List returns every vault for the account in id order, closed included.
	List(ctx context.Context, account id.AccountID) ([]*models.Vault, error)

	// CountOpen returns the number of non-closed vaults for the account.
	CountOpen(ctx context.Context, account id.AccountID) (int, error)

	// NextID atomically allocates the next vault id for the account,
	// starting at 1.
	NextID(ctx context.Context, account id.AccountID) (id.VaultID, error)
}

// Gate is the authorization precondition every operation runs first.
type Gate interface {
	Authorize(ctx context.Context, caller, account id.AccountID, need authzmodels.Scope) error
}
