// Package ports defines shared interfaces for the budget module.
package ports

import (
	"context"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/budget/models"
	id "coffer/pkg/domain"
)

// BudgetStore persists budget configs. Stores are pure I/O: the rollover and
// limit rules live in the service, and Put commits the whole record so a
// failed operation never leaves a partial field update behind.
type BudgetStore interface {
	// Get returns the config for an account, or nil when none exists.
	Get(ctx context.Context, account id.AccountID) (*models.Config, error)

	// Put inserts or replaces the config for the record's account.
	Put(ctx context.Context, config *models.Config) error

	// Delete removes the config; removed reports whether one existed.
	Delete(ctx context.Context, account id.AccountID) (removed bool, err error)
}

// Gate is the authorization precondition every mutating operation runs first.
type Gate interface {
	Authorize(ctx context.Context, caller, account id.AccountID, need authzmodels.Scope) error
}
