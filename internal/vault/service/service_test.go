package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/ledger"
	"coffer/internal/ledger/mocks"
	"coffer/internal/vault/models"
	"coffer/internal/vault/store"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

const (
	owner    = id.AccountID("alice")
	stranger = id.AccountID("mallory")
	treasury = id.AccountID("coffer-treasury")
)

type ownerGate struct{}

func (ownerGate) Authorize(_ context.Context, caller, account id.AccountID, _ authzmodels.Scope) error {
	if caller == account {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "caller is not authorized for this account")
}

type VaultServiceSuite struct {
	suite.Suite
	store   *store.InMemoryVaultStore
	ledger  *ledger.InMemoryLedger
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestVaultServiceSuite(t *testing.T) {
	suite.Run(t, new(VaultServiceSuite))
}

func (s *VaultServiceSuite) SetupTest() {
	s.store = store.NewInMemoryVaultStore()
	s.ledger = ledger.NewInMemoryLedger()
	s.ledger.Credit(owner, 10_000)
	s.ctx = context.Background()
	s.now = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	var err error
	s.service, err = New(s.store, ownerGate{}, s.ledger, treasury,
		WithClock(func() time.Time { return s.now }),
		WithMaxOpenVaults(3),
	)
	require.NoError(s.T(), err)
}

func (s *VaultServiceSuite) openFlexible(name string) *models.Vault {
	vault, err := s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{Name: name})
	s.Require().NoError(err)
	return vault
}

func (s *VaultServiceSuite) balance(account id.AccountID) int64 {
	balance, err := s.ledger.BalanceOf(s.ctx, account)
	s.Require().NoError(err)
	return balance
}

func (s *VaultServiceSuite) TestOpenAssignsSequentialIDs() {
	first := s.openFlexible("one")
	second := s.openFlexible("two")
	s.Equal(id.VaultID(1), first.ID)
	s.Equal(id.VaultID(2), second.ID)
}

func (s *VaultServiceSuite) TestOpenCapEnforced() {
	s.openFlexible("one")
	s.openFlexible("two")
	s.openFlexible("three")

	_, err := s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{Name: "four"})
	s.True(dErrors.HasCode(err, dErrors.CodeVaultCapExceeded))
}

func (s *VaultServiceSuite) TestDepositMovesFundsToTreasury() {
	vault := s.openFlexible("rainy day")

	updated, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 600)
	s.Require().NoError(err)
	s.Equal(int64(600), updated.Balance)
	s.Equal(int64(9_400), s.balance(owner))
	s.Equal(int64(600), s.balance(treasury))
}

func (s *VaultServiceSuite) TestDepositInsufficientLedgerBalance() {
	vault := s.openFlexible("rainy day")

	_, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 20_000)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))

	// Nothing moved and nothing was stored.
	s.Equal(int64(10_000), s.balance(owner))
	stored, err := s.store.Get(s.ctx, owner, vault.ID)
	s.Require().NoError(err)
	s.Zero(stored.Balance)
}

func (s *VaultServiceSuite) TestWithdrawFlexible() {
	vault := s.openFlexible("rainy day")
	_, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 600)
	s.Require().NoError(err)

	updated, err := s.service.Withdraw(s.ctx, owner, owner, vault.ID, 250)
	s.Require().NoError(err)
	s.Equal(int64(350), updated.Balance)
	s.Equal(models.StateActive, updated.State)
	s.Equal(int64(9_650), s.balance(owner))
}

func (s *VaultServiceSuite) TestWithdrawLockedUntilDate() {
	target := s.now.AddDate(0, 1, 0)
	vault, err := s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{
		Name: "trip", LockPolicy: models.LockUntilDate, TargetDate: target,
	})
	s.Require().NoError(err)
	_, err = s.service.Deposit(s.ctx, owner, owner, vault.ID, 600)
	s.Require().NoError(err)

	_, err = s.service.Withdraw(s.ctx, owner, owner, vault.ID, 100)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeVaultLocked))
	s.Equal(int64(9_400), s.balance(owner), "denied withdrawal moves nothing")

	// Past the target date the same withdrawal succeeds without any
	// intervening operation having run.
	s.now = target.AddDate(0, 0, 1)
	updated, err := s.service.Withdraw(s.ctx, owner, owner, vault.ID, 100)
	s.Require().NoError(err)
	s.Equal(models.StateMatured, updated.State)
	s.Equal(int64(500), updated.Balance)
}

func (s *VaultServiceSuite) TestDepositMaturesGoalVault() {
	vault, err := s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{
		Name: "car", LockPolicy: models.LockUntilGoal, Goal: 1_000,
	})
	s.Require().NoError(err)

	updated, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 999)
	s.Require().NoError(err)
	s.Equal(models.StateActive, updated.State)

	updated, err = s.service.Deposit(s.ctx, owner, owner, vault.ID, 1)
	s.Require().NoError(err)
	s.Equal(models.StateMatured, updated.State)
	s.Equal(s.now, updated.MaturedAt)
}

func (s *VaultServiceSuite) TestGoalMaturityStaysAfterPartialWithdrawal() {
	vault, err := s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{
		Name: "car", LockPolicy: models.LockUntilGoal, Goal: 1_000,
	})
	s.Require().NoError(err)
	_, err = s.service.Deposit(s.ctx, owner, owner, vault.ID, 1_000)
	s.Require().NoError(err)

	updated, err := s.service.Withdraw(s.ctx, owner, owner, vault.ID, 800)
	s.Require().NoError(err)
	s.Equal(models.StateMatured, updated.State, "maturity is sticky")

	// Still withdrawable below the goal.
	_, err = s.service.Withdraw(s.ctx, owner, owner, vault.ID, 100)
	s.NoError(err)
}

func (s *VaultServiceSuite) TestConcurrentDrainPaysOutOnce() {
	vault := s.openFlexible("rainy day")
	_, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 600)
	s.Require().NoError(err)

	const attempts = 10
	start := make(chan struct{})
	errs := make(chan error, attempts)
	for range attempts {
		go func() {
			<-start
			_, err := s.service.Withdraw(s.ctx, owner, owner, vault.ID, 600)
			errs <- err
		}()
	}
	close(start)

	succeeded := 0
	for range attempts {
		if <-errs == nil {
			succeeded++
		}
	}
	s.Equal(1, succeeded, "a full-balance withdrawal commits exactly once")
	s.Equal(int64(10_000), s.balance(owner))
	s.Zero(s.balance(treasury))
}

func (s *VaultServiceSuite) TestWithdrawInsufficientVaultBalance() {
	vault := s.openFlexible("rainy day")
	_, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 100)
	s.Require().NoError(err)

	_, err = s.service.Withdraw(s.ctx, owner, owner, vault.ID, 101)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientBalance))
	s.Equal(int64(100), s.balance(treasury))
}

func (s *VaultServiceSuite) TestDrainingWithdrawalClosesVault() {
	vault := s.openFlexible("rainy day")
	_, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 400)
	s.Require().NoError(err)

	updated, err := s.service.Withdraw(s.ctx, owner, owner, vault.ID, 400)
	s.Require().NoError(err)
	s.Equal(models.StateClosed, updated.State)
	s.Equal(int64(10_000), s.balance(owner))

	// The closed vault is a tombstone, distinct from never-existed.
	_, err = s.service.Withdraw(s.ctx, owner, owner, vault.ID, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeVaultClosed))

	_, err = s.service.Deposit(s.ctx, owner, owner, vault.ID, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeVaultClosed))

	_, err = s.service.Withdraw(s.ctx, owner, owner, 99, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeVaultNotFound))
}

func (s *VaultServiceSuite) TestClosedVaultIDNeverReused() {
	vault := s.openFlexible("one")
	_, err := s.service.Deposit(s.ctx, owner, owner, vault.ID, 100)
	s.Require().NoError(err)
	_, err = s.service.Withdraw(s.ctx, owner, owner, vault.ID, 100)
	s.Require().NoError(err)

	next := s.openFlexible("two")
	s.Equal(id.VaultID(2), next.ID)
}

func (s *VaultServiceSuite) TestClosedVaultFreesCapSlot() {
	first := s.openFlexible("one")
	s.openFlexible("two")
	s.openFlexible("three")

	_, err := s.service.Deposit(s.ctx, owner, owner, first.ID, 10)
	s.Require().NoError(err)
	_, err = s.service.Withdraw(s.ctx, owner, owner, first.ID, 10)
	s.Require().NoError(err)

	_, err = s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{Name: "four"})
	s.NoError(err)
}

func (s *VaultServiceSuite) TestGetReflectsMaturityWithoutPersisting() {
	target := s.now.AddDate(0, 0, 10)
	vault, err := s.service.Open(s.ctx, owner, owner, &models.OpenVaultRequest{
		Name: "trip", LockPolicy: models.LockUntilDate, TargetDate: target,
	})
	s.Require().NoError(err)

	s.now = target.AddDate(0, 0, 1)

	got, err := s.service.Get(s.ctx, owner, owner, vault.ID)
	s.Require().NoError(err)
	s.Equal(models.StateMatured, got.State)

	stored, err := s.store.Get(s.ctx, owner, vault.ID)
	s.Require().NoError(err)
	s.Equal(models.StateActive, stored.State, "reads must not write")
}

func (s *VaultServiceSuite) TestListSkipsClosedVaults() {
	first := s.openFlexible("one")
	s.openFlexible("two")

	_, err := s.service.Deposit(s.ctx, owner, owner, first.ID, 10)
	s.Require().NoError(err)
	_, err = s.service.Withdraw(s.ctx, owner, owner, first.ID, 10)
	s.Require().NoError(err)

	open, err := s.service.List(s.ctx, owner, owner)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(id.VaultID(2), open[0].ID)
}

func (s *VaultServiceSuite) TestUnauthorizedCaller() {
	vault := s.openFlexible("rainy day")

	_, err := s.service.Deposit(s.ctx, stranger, owner, vault.ID, 100)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Get(s.ctx, stranger, owner, vault.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *VaultServiceSuite) TestBatchOpen() {
	result, err := s.service.BatchOpen(s.ctx, &models.BatchOpenRequest{
		Items: []models.BatchOpenItem{
			{Account: "alice", Name: "one"},
			{Account: "bob", Name: "house", LockPolicy: models.LockUntilGoal, Goal: 2_000_000_000_000},
			{Account: "", Name: "ghost"},
			{Account: "carol", Name: ""},
		},
	})
	s.Require().NoError(err)
	s.Equal(4, result.TotalRequests)
	s.Equal(2, result.Successful)
	s.Equal(2, result.Failed)
	s.Equal(int64(2_000_000_000_000), result.TotalGoal)
	s.Equal(int64(1_000_000_000_000), result.AvgGoal, "mean goal across successful items")
	s.Equal(id.VaultID(1), result.Results[1].VaultID)
	s.NotEmpty(result.Results[2].Error)

	stored, err := s.store.Get(s.ctx, "bob", 1)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(int64(2_000_000_000_000), stored.Goal)
}

func TestDepositCompensatesFailedCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	accessor := mocks.NewMockAccessor(ctrl)

	vaultStore := &putFailingStore{InMemoryVaultStore: store.NewInMemoryVaultStore()}
	service, err := New(vaultStore, ownerGate{}, accessor, treasury)
	require.NoError(t, err)

	ctx := context.Background()
	vault, err := models.NewVault(owner, 1, "rainy day", 0, time.Time{}, models.LockFlexible, time.Now())
	require.NoError(t, err)
	require.NoError(t, vaultStore.InMemoryVaultStore.Put(ctx, vault))
	vaultStore.failPuts = true

	gomock.InOrder(
		accessor.EXPECT().Transfer(gomock.Any(), owner, treasury, int64(100)).Return(nil),
		accessor.EXPECT().Transfer(gomock.Any(), treasury, owner, int64(100)).Return(nil),
	)

	_, err = service.Deposit(ctx, owner, owner, vault.ID, 100)
	require.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

type putFailingStore struct {
	*store.InMemoryVaultStore
	failPuts bool
}

func (s *putFailingStore) Put(ctx context.Context, vault *models.Vault) error {
	if s.failPuts {
		return errors.New("connection refused")
	}
	return s.InMemoryVaultStore.Put(ctx, vault)
}
