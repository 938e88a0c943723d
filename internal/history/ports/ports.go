// Package ports defines shared interfaces for the history module.
package ports

import (
	"context"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/history/models"
	id "coffer/pkg/domain"
)

// HistoryStore persists action history entries.
type HistoryStore interface {
	// Append records one entry.
	Append(ctx context.Context, entry *models.Entry) error

	// ListByAccount returns the account's entries, newest first, capped at
	// limit.
	ListByAccount(ctx context.Context, account id.AccountID, limit int) ([]*models.Entry, error)
}

// Gate is the authorization precondition for history reads.
type Gate interface {
	Authorize(ctx context.Context, caller, account id.AccountID, need authzmodels.Scope) error
}
