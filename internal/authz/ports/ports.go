// Package ports defines shared interfaces for the authz module.
package ports

import (
	"context"

	"coffer/internal/authz/models"
	id "coffer/pkg/domain"
)

// DelegateStore persists delegate grants. Stores are pure I/O; the cap and
// scope rules live in the service.
type DelegateStore interface {
	// Get returns the grant for (account, delegate), or nil when none exists.
	Get(ctx context.Context, account, delegate id.AccountID) (*models.DelegateGrant, error)

	// Put inserts or replaces the grant for (account, delegate).
	Put(ctx context.Context, grant *models.DelegateGrant) error

	// Delete removes the grant for (account, delegate). Deleting an absent
	// grant is not an error; removed reports whether one existed.
	Delete(ctx context.Context, account, delegate id.AccountID) (removed bool, err error)

	// List returns all grants for an account.
	List(ctx context.Context, account id.AccountID) ([]*models.DelegateGrant, error)

	// Count returns the number of grants for an account.
	Count(ctx context.Context, account id.AccountID) (int, error)
}
