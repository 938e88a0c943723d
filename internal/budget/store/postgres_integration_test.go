//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"coffer/internal/budget/models"
	"coffer/internal/platform/postgres"
	"coffer/pkg/testutil/containers"
)

type PostgresBudgetStoreSuite struct {
	suite.Suite
	store *PostgresBudgetStore
	ctx   context.Context
}

func TestPostgresBudgetStoreSuite(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	require.NoError(t, postgres.EnsureSchema(ctx, pg.DB))

	suite.Run(t, &PostgresBudgetStoreSuite{
		store: NewPostgresBudgetStore(pg.DB),
		ctx:   ctx,
	})
}

func (s *PostgresBudgetStoreSuite) SetupTest() {
	_, err := s.store.db.ExecContext(s.ctx, "TRUNCATE budgets")
	require.NoError(s.T(), err)
}

func (s *PostgresBudgetStoreSuite) TestRoundTrip() {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	config, err := models.NewConfig("acc1", 100, models.Period{Kind: models.PeriodCustom, Length: 90 * time.Minute}, "groceries", now)
	s.Require().NoError(err)
	config.Spent = 40

	s.Require().NoError(s.store.Put(s.ctx, config))

	got, err := s.store.Get(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(config.Limit, got.Limit)
	s.Equal(config.Category, got.Category)
	s.Equal(config.Period, got.Period)
	s.Equal(config.Spent, got.Spent)
	s.True(config.PeriodStart.Equal(got.PeriodStart))
}

func (s *PostgresBudgetStoreSuite) TestGetMissing() {
	got, err := s.store.Get(s.ctx, "ghost")
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *PostgresBudgetStoreSuite) TestPutUpserts() {
	now := time.Now().UTC()
	config, err := models.NewConfig("acc1", 100, models.Period{Kind: models.PeriodDaily}, "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Put(s.ctx, config))

	config.Limit = 250
	config.Spent = 10
	s.Require().NoError(s.store.Put(s.ctx, config))

	got, err := s.store.Get(s.ctx, "acc1")
	s.Require().NoError(err)
	s.Equal(int64(250), got.Limit)
	s.Equal(int64(10), got.Spent)
}

func (s *PostgresBudgetStoreSuite) TestDelete() {
	now := time.Now().UTC()
	config, err := models.NewConfig("acc1", 100, models.Period{Kind: models.PeriodDaily}, "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Put(s.ctx, config))

	removed, err := s.store.Delete(s.ctx, "acc1")
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.Delete(s.ctx, "acc1")
	s.Require().NoError(err)
	s.False(removed)
}
