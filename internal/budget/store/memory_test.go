package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"coffer/internal/budget/models"
	id "coffer/pkg/domain"
)

type InMemoryBudgetStoreSuite struct {
	suite.Suite
	store *InMemoryBudgetStore
	ctx   context.Context
}

func TestInMemoryBudgetStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBudgetStoreSuite))
}

func (s *InMemoryBudgetStoreSuite) SetupTest() {
	s.store = NewInMemoryBudgetStore()
	s.ctx = context.Background()
}

func (s *InMemoryBudgetStoreSuite) config(account string, limit int64) *models.Config {
	config, err := models.NewConfig(
		id.AccountID(account), limit, models.Period{Kind: models.PeriodDaily}, "", time.Now().UTC())
	require.NoError(s.T(), err)
	return config
}

func (s *InMemoryBudgetStoreSuite) TestGetMissing() {
	config, err := s.store.Get(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Nil(config)
}

func (s *InMemoryBudgetStoreSuite) TestPutGet() {
	s.Require().NoError(s.store.Put(s.ctx, s.config("acc1", 100)))

	got, err := s.store.Get(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(int64(100), got.Limit)
}

func (s *InMemoryBudgetStoreSuite) TestGetReturnsClone() {
	s.Require().NoError(s.store.Put(s.ctx, s.config("acc1", 100)))

	got, err := s.store.Get(s.ctx, "acc1")
	s.Require().NoError(err)
	got.Spent = 999 // mutate the copy

	again, err := s.store.Get(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Zero(again.Spent, "stored record must be unaffected")
}

func (s *InMemoryBudgetStoreSuite) TestPutReplaces() {
	s.Require().NoError(s.store.Put(s.ctx, s.config("acc1", 100)))
	s.Require().NoError(s.store.Put(s.ctx, s.config("acc1", 250)))

	got, err := s.store.Get(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Equal(int64(250), got.Limit)
}

func (s *InMemoryBudgetStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Put(s.ctx, s.config("acc1", 100)))

	removed, err := s.store.Delete(s.ctx, "acc1")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(s.ctx, "acc1")
	s.Require().NoError(err)
	s.False(removed)
}
