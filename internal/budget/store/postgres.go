package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coffer/internal/budget/models"
	id "coffer/pkg/domain"
)

// PostgresBudgetStore persists budget configs in PostgreSQL. Pure I/O; the
// rollover and limit rules belong to the service. Period length is stored in
// nanoseconds.
type PostgresBudgetStore struct {
	db *sql.DB
}

func NewPostgresBudgetStore(db *sql.DB) *PostgresBudgetStore {
	return &PostgresBudgetStore{db: db}
}

func (s *PostgresBudgetStore) Get(ctx context.Context, account id.AccountID) (*models.Config, error) {
	query := `
		SELECT account, category, limit_amount, period_kind, period_length, period_start, spent
		FROM budgets
		WHERE account = $1
	`
	var config models.Config
	var acct, kind string
	var length int64
	err := s.db.QueryRowContext(ctx, query, account.String()).Scan(
		&acct, &config.Category, &config.Limit, &kind, &length, &config.PeriodStart, &config.Spent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get budget config: %w", err)
	}
	config.Account = id.AccountID(acct)
	config.Period = models.Period{Kind: models.PeriodKind(kind), Length: time.Duration(length)}
	return &config, nil
}

func (s *PostgresBudgetStore) Put(ctx context.Context, config *models.Config) error {
	query := `
		INSERT INTO budgets (account, category, limit_amount, period_kind, period_length, period_start, spent, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (account) DO UPDATE SET
			category = EXCLUDED.category,
			limit_amount = EXCLUDED.limit_amount,
			period_kind = EXCLUDED.period_kind,
			period_length = EXCLUDED.period_length,
			period_start = EXCLUDED.period_start,
			spent = EXCLUDED.spent,
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query,
		config.Account.String(),
		config.Category,
		config.Limit,
		string(config.Period.Kind),
		int64(config.Period.Length),
		config.PeriodStart,
		config.Spent,
	)
	if err != nil {
		return fmt.Errorf("put budget config: %w", err)
	}
	return nil
}

func (s *PostgresBudgetStore) Delete(ctx context.Context, account id.AccountID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE account = $1`,
		account.String(),
	)
	if err != nil {
		return false, fmt.Errorf("delete budget config: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete budget config rows affected: %w", err)
	}
	return rows > 0, nil
}
