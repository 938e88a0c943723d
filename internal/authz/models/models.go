package models

import (
	"time"

	"github.com/google/uuid"

	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// Scope bounds what a delegate may do on the granting account.
type Scope string

const (
	// ScopeManage permits every account operation (budgets, vaults, spends).
	ScopeManage Scope = "manage"
	// ScopeSpend permits recording spends only. This is the delegated
	// payment-executor capability: a linked processor can report spends but
	// cannot reconfigure budgets or touch vaults.
	ScopeSpend Scope = "spend"
)

// IsValid checks if the scope is one of the supported enum values.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeManage, ScopeSpend:
		return true
	}
	return false
}

// Covers reports whether a grant with this scope satisfies the needed scope.
func (s Scope) Covers(need Scope) bool {
	if s == ScopeManage {
		return true
	}
	return s == need
}

// DelegateGrant authorizes one caller to act on another's account.
type DelegateGrant struct {
	ID        string       `json:"id"`
	Account   id.AccountID `json:"account"`
	Delegate  id.AccountID `json:"delegate"`
	Scope     Scope        `json:"scope"`
	GrantedAt time.Time    `json:"granted_at"`
}

// NewDelegateGrant creates a grant with domain invariant validation.
func NewDelegateGrant(account, delegate id.AccountID, scope Scope, now time.Time) (*DelegateGrant, error) {
	if account.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account cannot be empty")
	}
	if delegate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "delegate cannot be empty")
	}
	if account == delegate {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner cannot delegate to itself")
	}
	if !scope.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid delegate scope")
	}
	return &DelegateGrant{
		ID:        uuid.NewString(),
		Account:   account,
		Delegate:  delegate,
		Scope:     scope,
		GrantedAt: now,
	}, nil
}
