// Package ledger defines the Ledger Accessor port: the host-provided
// capability for balance reads and transfers. Coffer never re-implements
// token mechanics; it only calls through this interface. The in-memory
// implementation simulates the host for development and tests.
package ledger

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Accessor

import (
	"context"

	id "coffer/pkg/domain"
)

// Accessor is the host ledger capability consumed by the vault service.
type Accessor interface {
	// Transfer moves amount from one account to another. It fails without
	// side effects when the source balance is insufficient.
	Transfer(ctx context.Context, from, to id.AccountID, amount int64) error

	// BalanceOf returns the current balance of an account.
	BalanceOf(ctx context.Context, account id.AccountID) (int64, error)
}
