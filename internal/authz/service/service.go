// Package service implements the authorization gate: the precondition every
// state-mutating entry point checks before any other logic runs. The gate is
// a pure check with no side effects, so an unauthorized call can never leave
// a partial mutation behind.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coffer/internal/authz/models"
	"coffer/internal/authz/ports"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/events"
)

// Clock supplies the current time; injected for deterministic tests.
type Clock func() time.Time

// DefaultMaxDelegates bounds the delegate set per account to cap storage.
const DefaultMaxDelegates = 5

type Service struct {
	store        ports.DelegateStore
	maxDelegates int
	logger       *slog.Logger
	publisher    events.Publisher
	clock        Clock
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMaxDelegates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxDelegates = n
		}
	}
}

func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(store ports.DelegateStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("delegate store is required")
	}

	svc := &Service{
		store:        store,
		maxDelegates: DefaultMaxDelegates,
		publisher:    events.Nop{},
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Authorize succeeds when caller owns the account or holds a grant covering
// the needed scope. It is side-effect free.
func (s *Service) Authorize(ctx context.Context, caller, account id.AccountID, need models.Scope) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if caller == account {
		return nil
	}

	grant, err := s.store.Get(ctx, account, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up delegate grant")
	}
	if grant == nil || !grant.Scope.Covers(need) {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner or a delegate with sufficient scope")
	}
	return nil
}

// Grant adds or replaces a delegate for an account. Only the owner manages
// the delegate set; delegates cannot mint further delegates.
func (s *Service) Grant(ctx context.Context, caller, account, delegate id.AccountID, scope models.Scope) (*models.DelegateGrant, error) {
	if caller != account {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the account owner may grant delegates")
	}
	if !scope.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "scope must be 'manage' or 'spend'")
	}

	grant, err := models.NewDelegateGrant(account, delegate, scope, s.clock())
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, account, delegate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up delegate grant")
	}
	if existing == nil {
		count, err := s.store.Count(ctx, account)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count delegate grants")
		}
		if count >= s.maxDelegates {
			return nil, dErrors.Newf(dErrors.CodeConflict, "delegate set is full (max %d)", s.maxDelegates)
		}
	}

	if err := s.store.Put(ctx, grant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store delegate grant")
	}

	s.emit(ctx, events.ActionDelegateGranted, account)
	return grant, nil
}

// Revoke removes a delegate. Revoking an absent delegate fails with NotFound
// so callers learn their view of the delegate set is stale.
func (s *Service) Revoke(ctx context.Context, caller, account, delegate id.AccountID) error {
	if caller != account {
		return dErrors.New(dErrors.CodeUnauthorized, "only the account owner may revoke delegates")
	}

	removed, err := s.store.Delete(ctx, account, delegate)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete delegate grant")
	}
	if !removed {
		return dErrors.New(dErrors.CodeNotFound, "delegate grant not found")
	}

	s.emit(ctx, events.ActionDelegateRevoked, account)
	return nil
}

// List returns the delegate set for an account. Owner and manage-scoped
// delegates may read it.
func (s *Service) List(ctx context.Context, caller, account id.AccountID) ([]*models.DelegateGrant, error) {
	if err := s.Authorize(ctx, caller, account, models.ScopeManage); err != nil {
		return nil, err
	}
	grants, err := s.store.List(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list delegate grants")
	}
	return grants, nil
}

func (s *Service) emit(ctx context.Context, action events.Action, account id.AccountID) {
	event := events.Event{Action: action, Account: account, At: s.clock()}
	if err := s.publisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit event", "action", action, "error", err)
	}
}
