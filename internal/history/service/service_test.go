package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	authzmodels "coffer/internal/authz/models"
	"coffer/internal/history/store"
	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
	"coffer/pkg/platform/events"
)

const (
	owner    = id.AccountID("alice")
	stranger = id.AccountID("mallory")
)

type ownerGate struct{}

func (ownerGate) Authorize(_ context.Context, caller, account id.AccountID, _ authzmodels.Scope) error {
	if caller == account {
		return nil
	}
	return dErrors.New(dErrors.CodeUnauthorized, "caller is not authorized for this account")
}

type HistoryServiceSuite struct {
	suite.Suite
	store   *store.InMemoryHistoryStore
	service *Service
	sink    *Sink
	ctx     context.Context
}

func TestHistoryServiceSuite(t *testing.T) {
	suite.Run(t, new(HistoryServiceSuite))
}

func (s *HistoryServiceSuite) SetupTest() {
	s.store = store.NewInMemoryHistoryStore()
	s.sink = NewSink(s.store)
	s.ctx = context.Background()

	var err error
	s.service, err = New(s.store, ownerGate{})
	require.NoError(s.T(), err)
}

func (s *HistoryServiceSuite) append(action events.Action, at time.Time) {
	s.Require().NoError(s.sink.Append(s.ctx, events.Event{
		Action:  action,
		Account: owner,
		Amount:  10,
		At:      at,
	}))
}

func (s *HistoryServiceSuite) TestListNewestFirst() {
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	s.append(events.ActionBudgetSet, base)
	s.append(events.ActionSpendRecorded, base.Add(time.Minute))
	s.append(events.ActionVaultOpened, base.Add(2*time.Minute))

	entries, err := s.service.List(s.ctx, owner, owner, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(events.ActionVaultOpened, entries[0].Action)
	s.Equal(events.ActionBudgetSet, entries[2].Action)
}

func (s *HistoryServiceSuite) TestListLimit() {
	base := time.Now().UTC()
	for i := range 10 {
		s.append(events.ActionSpendRecorded, base.Add(time.Duration(i)*time.Second))
	}

	entries, err := s.service.List(s.ctx, owner, owner, 3)
	s.Require().NoError(err)
	s.Len(entries, 3)

	_, err = s.service.List(s.ctx, owner, owner, -1)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *HistoryServiceSuite) TestListUnauthorized() {
	_, err := s.service.List(s.ctx, stranger, owner, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *HistoryServiceSuite) TestListEmptyAccount() {
	entries, err := s.service.List(s.ctx, owner, owner, 0)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *HistoryServiceSuite) TestSinkPreservesEventFields() {
	vaultID := id.VaultID(3)
	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.sink.Append(s.ctx, events.Event{
		Action:  events.ActionVaultDeposit,
		Account: owner,
		VaultID: &vaultID,
		Amount:  250,
		At:      at,
	}))

	entries, err := s.service.List(s.ctx, owner, owner, 1)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	entry := entries[0]
	s.NotEqual([16]byte{}, [16]byte(entry.ID))
	s.Equal(events.ActionVaultDeposit, entry.Action)
	s.Require().NotNil(entry.VaultID)
	s.Equal(vaultID, *entry.VaultID)
	s.Equal(int64(250), entry.Amount)
	s.Equal(at, entry.At)
}
