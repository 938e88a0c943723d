// Package service implements the savings vault state machine. Funds move
// between the owner's ledger account and the treasury account through the
// host ledger; the vault record tracks how much of the treasury balance
// belongs to each goal.
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
	"coffer/internal/ledger"
	"coffer/internal/platform/locks"
	"coffer/internal/vault/metrics"
	"coffer/internal/vault/models"
	"coffer/internal/vault/ports"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/events"
)

// Clock abstracts time for deterministic maturity tests.
type Clock func() time.Time

const (
	// DefaultMaxOpenVaults caps non-closed vaults per account.
	DefaultMaxOpenVaults = 5
	// DefaultHighValueThreshold marks goals large enough to flag for
	// downstream review.
	DefaultHighValueThreshold = int64(1_000_000_000_000)
)

type Service struct {
	store         ports.VaultStore
	gate          ports.Gate
	ledger        ledger.Accessor
	locks         *locks.Keyed
	treasury      id.AccountID
	maxOpenVaults int
	highValue     int64
	logger        *slog.Logger
	publisher     events.Publisher
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	clock         Clock
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

func WithMaxOpenVaults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxOpenVaults = n
		}
	}
}

func WithHighValueThreshold(v int64) Option {
	return func(s *Service) {
		if v > 0 {
			s.highValue = v
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

func New(store ports.VaultStore, gate ports.Gate, accessor ledger.Accessor, treasury id.AccountID, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "vault store is required")
	}
	if gate == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "authorization gate is required")
	}
	if accessor == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ledger accessor is required")
	}
	if treasury.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "treasury account is required")
	}
	s := &Service{
		store:         store,
		gate:          gate,
		ledger:        accessor,
		locks:         locks.NewKeyed(),
		treasury:      treasury,
		maxOpenVaults: DefaultMaxOpenVaults,
		highValue:     DefaultHighValueThreshold,
		logger:        slog.Default(),
		publisher:     events.Nop{},
		tracer:        otel.Tracer("coffer/vault"),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open creates a new vault. Ids come from a per-account counter and are
// never reused, so a closed vault's id stays retired forever.
func (s *Service) Open(ctx context.Context, caller, account id.AccountID, req *models.OpenVaultRequest) (*models.Vault, error) {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeManage); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.open(ctx, account, req.Name, req.Goal, req.TargetDate, req.LockPolicy)
}

func (s *Service) open(ctx context.Context, account id.AccountID, name string, goal int64, targetDate time.Time, policy models.LockPolicy) (*models.Vault, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	open, err := s.store.CountOpen(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count open vaults")
	}
	if open >= s.maxOpenVaults {
		return nil, dErrors.Newf(dErrors.CodeVaultCapExceeded,
			"account already has %d open vaults", open)
	}

	vaultID, err := s.store.NextID(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate vault id")
	}
	vault, err := models.NewVault(account, vaultID, name, goal, targetDate, policy, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, vault); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store vault")
	}
	if s.metrics != nil {
		s.metrics.IncrementVaultsOpened()
	}

	s.logger.Info("vault opened",
		"account", account,
		"vault_id", vault.ID,
		"lock_policy", vault.LockPolicy,
		"goal", vault.Goal)
	s.emit(ctx, events.ActionVaultOpened, account, &vault.ID, 0)
	if vault.Goal >= s.highValue {
		if s.metrics != nil {
			s.metrics.IncrementHighValueGoals()
		}
		s.emit(ctx, events.ActionHighValueGoal, account, &vault.ID, vault.Goal)
	}
	return vault, nil
}

// Deposit moves funds from the owner's ledger account into the vault. A
// goal-locked vault that reaches its goal matures as part of the same
// commit.
func (s *Service) Deposit(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID, amount int64) (*models.Vault, error) {
	ctx, span := s.tracer.Start(ctx, "vault.Deposit",
		trace.WithAttributes(attribute.String("account", account.String())))
	defer span.End()

	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeManage); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}

	unlock := s.locks.Lock(account.String())
	defer unlock()

	vault, err := s.load(ctx, account, vaultID)
	if err != nil {
		return nil, err
	}
	if vault.State == models.StateClosed {
		return nil, dErrors.New(dErrors.CodeVaultClosed, "vault is closed")
	}

	newBalance, err := id.CheckedAdd(vault.Balance, amount)
	if err != nil {
		return nil, err
	}

	// Move the funds first; the ledger transfer is the operation that can
	// legitimately fail on caller state. A store failure afterwards is
	// compensated so the ledger and the vault record never diverge.
	if err := s.ledger.Transfer(ctx, account, s.treasury, amount); err != nil {
		return nil, err
	}

	now := s.clock()
	vault.Balance = newBalance
	matured := vault.Refresh(now)
	if err := s.store.Put(ctx, vault); err != nil {
		s.compensate(ctx, s.treasury, account, amount)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store vault")
	}
	if s.metrics != nil {
		s.metrics.IncrementDeposits()
	}

	s.logger.Info("vault deposit",
		"account", account,
		"vault_id", vault.ID,
		"amount", amount,
		"balance", vault.Balance)
	s.emit(ctx, events.ActionVaultDeposit, account, &vault.ID, amount)
	if matured {
		s.emit(ctx, events.ActionVaultMatured, account, &vault.ID, vault.Balance)
	}
	return vault, nil
}

// Withdraw moves funds from the vault back to the owner's ledger account.
// The maturity check runs before the lock check, so a vault whose unlock
// condition came due since the last operation is withdrawable immediately.
// Draining the balance to zero closes the vault. Mutations on the same
// account are serialized, so two concurrent withdrawals cannot both pass
// the balance check and drain the treasury twice.
func (s *Service) Withdraw(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID, amount int64) (*models.Vault, error) {
	ctx, span := s.tracer.Start(ctx, "vault.Withdraw",
		trace.WithAttributes(attribute.String("account", account.String())))
	defer span.End()

	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeManage); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}

	unlock := s.locks.Lock(account.String())
	defer unlock()

	vault, err := s.load(ctx, account, vaultID)
	if err != nil {
		return nil, err
	}
	if vault.State == models.StateClosed {
		return nil, dErrors.New(dErrors.CodeVaultClosed, "vault is closed")
	}

	now := s.clock()
	matured := vault.Refresh(now)
	if !vault.Withdrawable() {
		return nil, dErrors.New(dErrors.CodeVaultLocked, "vault is locked")
	}
	if amount > vault.Balance {
		return nil, dErrors.Newf(dErrors.CodeInsufficientBalance,
			"withdrawal of %d exceeds vault balance of %d", amount, vault.Balance)
	}

	if err := s.ledger.Transfer(ctx, s.treasury, account, amount); err != nil {
		return nil, err
	}

	vault.Balance -= amount
	closed := vault.Balance == 0
	if closed {
		vault.State = models.StateClosed
	}
	if err := s.store.Put(ctx, vault); err != nil {
		s.compensate(ctx, account, s.treasury, amount)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store vault")
	}
	if s.metrics != nil {
		s.metrics.IncrementWithdrawals()
		if closed {
			s.metrics.IncrementVaultsClosed()
		}
	}

	s.logger.Info("vault withdrawal",
		"account", account,
		"vault_id", vault.ID,
		"amount", amount,
		"balance", vault.Balance,
		"closed", closed)
	if matured {
		s.emit(ctx, events.ActionVaultMatured, account, &vault.ID, vault.Balance+amount)
	}
	s.emit(ctx, events.ActionVaultWithdrawn, account, &vault.ID, amount)
	if closed {
		s.emit(ctx, events.ActionVaultClosed, account, &vault.ID, 0)
	}
	return vault, nil
}

// Get returns one vault, closed ones included. The maturity shown reflects
// the clock, but reads never persist the transition.
func (s *Service) Get(ctx context.Context, caller, account id.AccountID, vaultID id.VaultID) (*models.Vault, error) {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeSpend); err != nil {
		return nil, err
	}
	vault, err := s.load(ctx, account, vaultID)
	if err != nil {
		return nil, err
	}
	vault.Refresh(s.clock())
	return vault, nil
}

// List returns the account's open vaults in id order. Closed vaults are
// tombstones reachable only by direct Get.
func (s *Service) List(ctx context.Context, caller, account id.AccountID) ([]*models.Vault, error) {
	if err := s.gate.Authorize(ctx, caller, account, authzmodels.ScopeSpend); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx, account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vaults")
	}
	now := s.clock()
	open := make([]*models.Vault, 0, len(all))
	for _, vault := range all {
		if vault.State == models.StateClosed {
			continue
		}
		vault.Refresh(now)
		open = append(open, vault)
	}
	return open, nil
}

// BatchOpen opens vaults for many accounts in one call. Items are
// independent; caller admin checks happen at the transport layer.
func (s *Service) BatchOpen(ctx context.Context, req *models.BatchOpenRequest) (*models.BatchOpenResult, error) {
	ctx, span := s.tracer.Start(ctx, "vault.BatchOpen",
		trace.WithAttributes(attribute.Int("items", len(req.Items))))
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &models.BatchOpenResult{
		TotalRequests: len(req.Items),
		Results:       make([]models.BatchItemResult, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		itemResult := models.BatchItemResult{Account: item.Account}

		vault, err := s.openItem(ctx, item)
		if err != nil {
			itemResult.Error = dErrors.MessageOf(err)
			result.Failed++
		} else {
			itemResult.VaultID = vault.ID
			result.Successful++
			result.TotalGoal = saturatingAdd(result.TotalGoal, vault.Goal)
		}
		result.Results = append(result.Results, itemResult)
	}
	if result.Successful > 0 {
		result.AvgGoal = result.TotalGoal / int64(result.Successful)
	}

	s.logger.Info("batch vault open complete",
		"successful", result.Successful,
		"failed", result.Failed,
		"total_goal", result.TotalGoal,
		"avg_goal", result.AvgGoal)
	return result, nil
}

func (s *Service) openItem(ctx context.Context, item models.BatchOpenItem) (*models.Vault, error) {
	account, err := id.ParseAccountID(item.Account)
	if err != nil {
		return nil, err
	}
	req := &models.OpenVaultRequest{
		Name:       item.Name,
		Goal:       item.Goal,
		TargetDate: item.TargetDate,
		LockPolicy: item.LockPolicy,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.open(ctx, account, req.Name, req.Goal, req.TargetDate, req.LockPolicy)
}

// load fetches a vault and maps absence to the not-found code. Closed vaults
// are returned; callers distinguish closed from never-existed.
func (s *Service) load(ctx context.Context, account id.AccountID, vaultID id.VaultID) (*models.Vault, error) {
	vault, err := s.store.Get(ctx, account, vaultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vault")
	}
	if vault == nil {
		return nil, dErrors.Newf(dErrors.CodeVaultNotFound, "vault %d not found", vaultID)
	}
	return vault, nil
}

// compensate reverses a ledger transfer after a failed commit. A failed
// compensation is logged loudly; it means the ledger and the vault store
// need operator reconciliation.
func (s *Service) compensate(ctx context.Context, from, to id.AccountID, amount int64) {
	if err := s.ledger.Transfer(ctx, from, to, amount); err != nil {
		s.logger.Error("compensation transfer failed, ledger and vault store diverged",
			"from", from,
			"to", to,
			"amount", amount,
			"error", err)
	}
}

func saturatingAdd(a, b int64) int64 {
	sum, err := id.CheckedAdd(a, b)
	if err != nil {
		return math.MaxInt64
	}
	return sum
}

func (s *Service) emit(ctx context.Context, action events.Action, account id.AccountID, vaultID *id.VaultID, amount int64) {
	event := events.Event{
		Action:  action,
		Account: account,
		Amount:  amount,
		At:      s.clock(),
	}
	if vaultID != nil {
		v := *vaultID
		event.VaultID = &v
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to publish vault event", "action", action, "error", err)
	}
}
