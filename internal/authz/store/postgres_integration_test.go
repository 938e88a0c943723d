//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"coffer/internal/authz/models"
	"coffer/internal/platform/postgres"
	"coffer/pkg/domain"
	"coffer/pkg/testutil/containers"
)

type PostgresDelegateStoreSuite struct {
	suite.Suite
	store *PostgresDelegateStore
	ctx   context.Context
}

func TestPostgresDelegateStoreSuite(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.EnsureSchema(ctx, pg.DB))

	suite.Run(t, &PostgresDelegateStoreSuite{
		store: NewPostgresDelegateStore(pg.DB),
		ctx:   ctx,
	})
}

func (s *PostgresDelegateStoreSuite) SetupTest() {
	_, err := s.store.db.ExecContext(s.ctx, "TRUNCATE delegates")
	require.NoError(s.T(), err)
}

func (s *PostgresDelegateStoreSuite) TestRoundTripAndUpsert() {
	grant, err := models.NewDelegateGrant("alice", "bob", models.ScopeSpend, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Put(s.ctx, grant))

	got, err := s.store.Get(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(models.ScopeSpend, got.Scope)

	// Re-granting replaces the scope, not the row count.
	grant.Scope = models.ScopeManage
	s.Require().NoError(s.store.Put(s.ctx, grant))

	got, err = s.store.Get(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.Equal(models.ScopeManage, got.Scope)

	n, err := s.store.Count(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresDelegateStoreSuite) TestDeleteAndList() {
	for _, delegate := range []domain.AccountID{"bob", "carol"} {
		grant, err := models.NewDelegateGrant("alice", delegate, models.ScopeSpend, time.Now().UTC())
		s.Require().NoError(err)
		s.Require().NoError(s.store.Put(s.ctx, grant))
	}

	grants, err := s.store.List(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(grants, 2)

	removed, err := s.store.Delete(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.False(removed)
}
