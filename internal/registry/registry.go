// Package registry assembles the composite policy view for an account: its
// budget position, open vaults, and delegate grants in one read.
package registry

import (
	"context"
	"log/slog"

	authzmodels "coffer/internal/authz/models"
	budgetmodels "coffer/internal/budget/models"
	vaultmodels "coffer/internal/vault/models"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// BudgetReader is the slice of the budget service the registry needs.
type BudgetReader interface {
	Remaining(ctx context.Context, caller, account id.AccountID) (*budgetmodels.Remaining, error)
}

// VaultLister is the slice of the vault service the registry needs.
type VaultLister interface {
	List(ctx context.Context, caller, account id.AccountID) ([]*vaultmodels.Vault, error)
}

// DelegateLister is the slice of the authz service the registry needs.
type DelegateLister interface {
	List(ctx context.Context, caller, account id.AccountID) ([]*authzmodels.DelegateGrant, error)
}

// Policy is the composite read-model. Delegates is nil when the caller may
// spend but not manage; the underlying services enforce that themselves.
type Policy struct {
	Account   id.AccountID                 `json:"account"`
	Budget    *budgetmodels.Remaining      `json:"budget"`
	Vaults    []*vaultmodels.Vault         `json:"vaults"`
	Delegates []*authzmodels.DelegateGrant `json:"delegates,omitempty"`
}

type Service struct {
	budgets   BudgetReader
	vaults    VaultLister
	delegates DelegateLister
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(budgets BudgetReader, vaults VaultLister, delegates DelegateLister, opts ...Option) (*Service, error) {
	if budgets == nil || vaults == nil || delegates == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "budget, vault, and delegate readers are required")
	}
	s := &Service{budgets: budgets, vaults: vaults, delegates: delegates, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Resolve returns the account's full policy position. Authorization is
// delegated to each underlying read; a caller who cannot list delegates
// still gets the budget and vault view with Delegates omitted.
func (s *Service) Resolve(ctx context.Context, caller, account id.AccountID) (*Policy, error) {
	budget, err := s.budgets.Remaining(ctx, caller, account)
	if err != nil {
		return nil, err
	}
	vaults, err := s.vaults.List(ctx, caller, account)
	if err != nil {
		return nil, err
	}

	policy := &Policy{Account: account, Budget: budget, Vaults: vaults}
	grants, err := s.delegates.List(ctx, caller, account)
	switch {
	case err == nil:
		policy.Delegates = grants
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		// Spend-scoped callers see everything but the grant list.
	default:
		return nil, err
	}
	return policy, nil
}
