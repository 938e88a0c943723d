// Package service implements the budget engine: per-account spending limits
// with lazy period rollover.
package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/budget/metrics"
	"coffer/internal/budget/models"
	"coffer/internal/budget/ports"
	"coffer/internal/platform/locks"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/events"
)

// Clock abstracts time for deterministic rollover tests.
type Clock func() time.Time

type Service struct {
	store     ports.BudgetStore
	gate      ports.Gate
	locks     *locks.Keyed
	logger    *slog.Logger
	publisher events.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	clock     Clock
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(store ports.BudgetStore, gate ports.Gate, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "budget store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "authorization gate is required")
	}
	s := &Service{
		store:     store,
		gate:      gate,
		locks:     locks.NewKeyed(),
		logger:    slog.Default(),
		publisher: events.Nop{},
		tracer:    otel.Tracer("coffer/budget"),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Set replaces the account's budget config. Any previous config, including
// its spent counter, is discarded and the new period starts now.
func (s *Service) Set(ctx context.Context, caller, account id.AccountID, req *models.SetBudgetRequest) (*models.Config, error) {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeManage); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	period, err := req.ParsedPeriod()
	if err != nil {
		return nil, err
	}

	config, err := models.NewConfig(account, req.Limit, period, req.Category, s.clock())
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(account.String())
	defer unlock()

	existing, err := s.store.Get(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load budget config")
	}
	if err := s.store.Put(ctx, config); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store budget config")
	}
	if existing == nil && s.metrics != nil {
		s.metrics.IncrementActiveBudgets()
	}

	s.logger.Info("budget set",
		"account", account,
		"limit", config.Limit,
		"period", config.Period.Kind)
	s.emit(ctx, events.ActionBudgetSet, account, config.Limit)
	return config, nil
}

// Clear removes the account's budget config, lifting all spending limits.
func (s *Service) Clear(ctx context.Context, caller, account id.AccountID) error {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeManage); err != nil {
		return err
	}
	unlock := s.locks.Lock(account.String())
	defer unlock()

	removed, err := s.store.Delete(ctx, account)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete budget config")
	}
	if !removed {
		return dErrors.New(dErrors.CodeNotFound, "no budget config for account")
	}
	if s.metrics != nil {
		s.metrics.DecrementActiveBudgets()
	}

	s.logger.Info("budget cleared", "account", account)
	s.emit(ctx, events.ActionBudgetCleared, account, 0)
	return nil
}

// RecordSpend checks a spend against the account's limit and commits it.
// The check and the commit see the same rolled-forward state; a denied or
// failed spend leaves the stored config untouched. Spends on the same
// account are serialized, so two concurrent calls cannot both pass the
// limit check against the same stale counter.
func (s *Service) RecordSpend(ctx context.Context, caller, account id.AccountID, amount int64) (*models.SpendReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "budget.RecordSpend",
		trace.WithAttributes(attribute.String("account", account.String())))
	defer span.End()

	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeSpend); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount cannot be negative")
	}

	unlock := s.locks.Lock(account.String())
	defer unlock()

	config, err := s.store.Get(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load budget config")
	}
	if config == nil {
		// No config means no limit. Nothing to persist.
		s.emit(ctx, events.ActionSpendRecorded, account, amount)
		return &models.SpendReceipt{Account: account, Amount: amount, Limited: false}, nil
	}

	now := s.clock()
	rolled := config.RollForward(now)

	newSpent, err := id.CheckedAdd(config.Spent, amount)
	if err != nil {
		return nil, err
	}
	if newSpent > config.Limit {
		if s.metrics != nil {
			s.metrics.IncrementSpendsDenied()
		}
		s.logger.Info("spend denied",
			"account", account,
			"amount", amount,
			"remaining", config.Limit-config.Spent)
		s.emit(ctx, events.ActionBudgetExceeded, account, amount)
		return nil, dErrors.Newf(dErrors.CodeBudgetExceeded,
			"spend of %d exceeds remaining budget of %d", amount, config.Limit-config.Spent)
	}

	if amount == 0 {
		// Zero-amount spend succeeds with no state change; even a pending
		// rollover stays unpersisted until a real mutation lands.
		return &models.SpendReceipt{
			Account:   account,
			Amount:    0,
			Limited:   true,
			Remaining: config.Limit - config.Spent,
		}, nil
	}

	config.Spent = newSpent
	if err := s.store.Put(ctx, config); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store budget config")
	}
	if s.metrics != nil {
		s.metrics.IncrementSpendsRecorded()
	}

	s.logger.Info("spend recorded",
		"account", account,
		"amount", amount,
		"remaining", config.Limit-config.Spent,
		"rolled", rolled)
	s.emit(ctx, events.ActionSpendRecorded, account, amount)
	return &models.SpendReceipt{
		Account:   account,
		Amount:    amount,
		Limited:   true,
		Remaining: config.Limit - config.Spent,
	}, nil
}

// Remaining reports the budget left in the current period. The rollover is
// computed against the clock but never persisted by a read.
func (s *Service) Remaining(ctx context.Context, caller, account id.AccountID) (*models.Remaining, error) {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeSpend); err != nil {
		return nil, err
	}
	config, err := s.store.Get(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load budget config")
	}
	if config == nil {
		return &models.Remaining{Account: account, Limited: false}, nil
	}

	config.RollForward(s.clock())
	return &models.Remaining{
		Account:     account,
		Limited:     true,
		Category:    config.Category,
		Limit:       config.Limit,
		Spent:       config.Spent,
		Remaining:   config.Limit - config.Spent,
		PeriodStart: config.PeriodStart,
		PeriodEnd:   config.PeriodEnd(),
	}, nil
}

// BatchAllocate assigns budgets to many accounts in one call. Items are
// independent: a failed item is reported in the result and does not stop the
// rest. Caller admin checks happen at the transport layer.
func (s *Service) BatchAllocate(ctx context.Context, req *models.BatchAllocateRequest) (*models.BatchAllocateResult, error) {
	ctx, span := s.tracer.Start(ctx, "budget.BatchAllocate",
		trace.WithAttributes(attribute.Int("items", len(req.Items))))
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	result := &models.BatchAllocateResult{Results: make([]models.BatchItemResult, 0, len(req.Items))}
	for _, item := range req.Items {
		itemResult := models.BatchItemResult{Account: item.Account}

		config, err := item.ToConfig(now)
		if err == nil {
			unlock := s.locks.Lock(config.Account.String())
			var existing *models.Config
			existing, err = s.store.Get(ctx, config.Account)
			if err == nil {
				if err = s.store.Put(ctx, config); err == nil && existing == nil && s.metrics != nil {
					s.metrics.IncrementActiveBudgets()
				}
			}
			unlock()
		}

		if err != nil {
			itemResult.Error = dErrors.MessageOf(err)
			result.Failed++
		} else {
			result.Successful++
			result.TotalAllocated = saturatingAdd(result.TotalAllocated, config.Limit)
			s.emit(ctx, events.ActionBudgetSet, config.Account, config.Limit)
		}
		result.Results = append(result.Results, itemResult)
	}

	s.logger.Info("batch allocation complete",
		"successful", result.Successful,
		"failed", result.Failed,
		"total_allocated", result.TotalAllocated)
	return result, nil
}

func saturatingAdd(a, b int64) int64 {
	sum, err := id.CheckedAdd(a, b)
	if err != nil {
		return math.MaxInt64
	}
	return sum
}

func (s *Service) emit(ctx context.Context, action events.Action, account id.AccountID, amount int64) {
	event := events.Event{
		Action:  action,
		Account: account,
		Amount:  amount,
		At:      s.clock(),
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to publish budget event", "action", action, "error", err)
	}
}
