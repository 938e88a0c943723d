// Package service exposes the per-account action history and adapts the
// history store into an event sink.
package service

import (
	"context"
	"log/slog"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/history/models"
	"coffer/internal/history/ports"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/events"
)

const (
	// DefaultLimit applies when a list request gives no limit.
	DefaultLimit = 50
	// MaxLimit caps a single list request.
	MaxLimit = 500
)

type Service struct {
	store  ports.HistoryStore
	gate   ports.Gate
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(store ports.HistoryStore, gate ports.Gate, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "history store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "authorization gate is required")
	}
	s := &Service{store: store, gate: gate, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns the account's history, newest first. A zero limit means
// DefaultLimit; limits above MaxLimit are clamped.
func (s *Service) List(ctx context.Context, caller, account id.AccountID, limit int) ([]*models.Entry, error) {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeSpend); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit cannot be negative")
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	entries, err := s.store.ListByAccount(ctx, account, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list history")
	}
	return entries, nil
}

// Sink adapts the history store to the event worker. Every committed policy
// event lands here as one append.
type Sink struct {
	store ports.HistoryStore
}

func NewSink(store ports.HistoryStore) *Sink { return &Sink{store: store} }

// Append implements events.Sink.
func (s *Sink) Append(ctx context.Context, event events.Event) error {
	return s.store.Append(ctx, models.FromEvent(event))
}

var _ events.Sink = (*Sink)(nil)
