// Package models defines the savings vault state machine.
package models

import (
	"time"

	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// LockPolicy controls when a vault's balance becomes withdrawable.
type LockPolicy string

const (
	// LockFlexible vaults are withdrawable at any time.
	LockFlexible LockPolicy = "flexible"
	// LockUntilDate vaults unlock when the target date passes.
	LockUntilDate LockPolicy = "until_date"
	// LockUntilGoal vaults unlock when the balance first reaches the goal.
	LockUntilGoal LockPolicy = "until_goal"
)

func (p LockPolicy) IsValid() bool {
	switch p {
	case LockFlexible, LockUntilDate, LockUntilGoal:
		return true
	}
	return false
}

// State is the vault lifecycle position. Transitions only move forward:
// Active -> Matured -> Closed, with Active -> Closed for flexible vaults
// drained before they ever mature.
type State string

const (
	StateActive  State = "active"
	StateMatured State = "matured"
	StateClosed  State = "closed"
)

func (s State) IsValid() bool {
	switch s {
	case StateActive, StateMatured, StateClosed:
		return true
	}
	return false
}

// MaxNameLength bounds the vault display name.
const MaxNameLength = 64

// Vault is a savings goal holding funds moved out of the owner's ledger
// account. Invariant at every committed state: Balance >= 0, and a Closed
// vault has Balance == 0.
type Vault struct {
	Account    id.AccountID `json:"account"`
	ID         id.VaultID   `json:"id"`
	Name       string       `json:"name"`
	Goal       int64        `json:"goal,omitempty"`
	TargetDate time.Time    `json:"target_date,omitzero"`
	LockPolicy LockPolicy   `json:"lock_policy"`
	State      State        `json:"state"`
	Balance    int64        `json:"balance"`
	CreatedAt  time.Time    `json:"created_at"`
	MaturedAt  time.Time    `json:"matured_at,omitzero"`
}

// NewVault creates an Active vault with domain invariant validation.
func NewVault(account id.AccountID, vaultID id.VaultID, name string, goal int64, targetDate time.Time, policy LockPolicy, now time.Time) (*Vault, error) {
	if account.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account cannot be empty")
	}
	if vaultID == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "vault id cannot be zero")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(name) > MaxNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "name must be 64 characters or less")
	}
	if !policy.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "lock policy must be flexible, until_date, or until_goal")
	}
	if goal < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "goal cannot be negative")
	}
	switch policy {
	case LockUntilGoal:
		if goal <= 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "until_goal vaults require a positive goal")
		}
	case LockUntilDate:
		if targetDate.IsZero() {
			return nil, dErrors.New(dErrors.CodeValidation, "until_date vaults require a target date")
		}
		if !targetDate.After(now) {
			return nil, dErrors.New(dErrors.CodeValidation, "target date must be in the future")
		}
	}
	return &Vault{
		Account:    account,
		ID:         vaultID,
		Name:       name,
		Goal:       goal,
		TargetDate: targetDate,
		LockPolicy: policy,
		State:      StateActive,
		Balance:    0,
		CreatedAt:  now,
	}, nil
}

// Open reports whether the vault still counts against the per-account cap.
func (v *Vault) Open() bool { return v.State != StateClosed }

// Refresh applies the lazy maturity transition: an Active vault whose unlock
// condition holds at now becomes Matured. Maturity is sticky; a goal-locked
// vault stays Matured even if a later withdrawal drops the balance below the
// goal. Closed vaults never change. Like the budget rollover, no timer runs
// this; it happens on the next operation that touches the vault, and the
// caller decides whether the result is persisted.
func (v *Vault) Refresh(now time.Time) (matured bool) {
	if v.State != StateActive {
		return false
	}
	switch v.LockPolicy {
	case LockUntilDate:
		matured = !now.Before(v.TargetDate)
	case LockUntilGoal:
		matured = v.Balance >= v.Goal
	}
	if matured {
		v.State = StateMatured
		v.MaturedAt = now
	}
	return matured
}

// Withdrawable reports whether funds may leave the vault in its current
// state. Call Refresh first so the lazy maturity transition has been applied.
func (v *Vault) Withdrawable() bool {
	switch v.State {
	case StateMatured:
		return true
	case StateActive:
		return v.LockPolicy == LockFlexible
	}
	return false
}
