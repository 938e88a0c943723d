package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"coffer/internal/authz/models"
	id "coffer/pkg/domain"
)

type InMemoryDelegateStoreSuite struct {
	suite.Suite
	store *InMemoryDelegateStore
	ctx   context.Context
}

func TestInMemoryDelegateStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryDelegateStoreSuite))
}

func (s *InMemoryDelegateStoreSuite) SetupTest() {
	s.store = NewInMemoryDelegateStore()
	s.ctx = context.Background()
}

func (s *InMemoryDelegateStoreSuite) grant(account, delegate string, scope models.Scope) *models.DelegateGrant {
	grant, err := models.NewDelegateGrant(id.AccountID(account), id.AccountID(delegate), scope, time.Now())
	require.NoError(s.T(), err)
	return grant
}

func (s *InMemoryDelegateStoreSuite) TestPutGet() {
	grant := s.grant("acc1", "proc", models.ScopeSpend)
	s.Require().NoError(s.store.Put(s.ctx, grant))

	got, err := s.store.Get(s.ctx, "acc1", "proc")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(models.ScopeSpend, got.Scope)

	missing, err := s.store.Get(s.ctx, "acc1", "ghost")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *InMemoryDelegateStoreSuite) TestGetReturnsClone() {
	s.Require().NoError(s.store.Put(s.ctx, s.grant("acc1", "proc", models.ScopeSpend)))

	got, err := s.store.Get(s.ctx, "acc1", "proc")
	s.Require().NoError(err)
	got.Scope = models.ScopeManage // mutate the copy

	again, err := s.store.Get(s.ctx, "acc1", "proc")
	s.Require().NoError(err)
	s.Equal(models.ScopeSpend, again.Scope, "stored record must be unaffected")
}

func (s *InMemoryDelegateStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Put(s.ctx, s.grant("acc1", "proc", models.ScopeSpend)))

	removed, err := s.store.Delete(s.ctx, "acc1", "proc")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(s.ctx, "acc1", "proc")
	s.Require().NoError(err)
	s.False(removed)
}

func (s *InMemoryDelegateStoreSuite) TestListAndCount() {
	s.Require().NoError(s.store.Put(s.ctx, s.grant("acc1", "d1", models.ScopeSpend)))
	s.Require().NoError(s.store.Put(s.ctx, s.grant("acc1", "d2", models.ScopeManage)))
	s.Require().NoError(s.store.Put(s.ctx, s.grant("acc2", "d1", models.ScopeSpend)))

	grants, err := s.store.List(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Len(grants, 2)

	n, err := s.store.Count(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.store.Count(s.ctx, "acc3")
	s.Require().NoError(err)
	s.Equal(0, n)
}
