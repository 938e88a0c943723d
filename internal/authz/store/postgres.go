package store

import (
	"context"
	"database/sql"
	"fmt"

	"coffer/internal/authz/models"
	id "coffer/pkg/domain"
)

// PostgresDelegateStore persists delegate grants in PostgreSQL.
// Pure I/O; the cap and scope rules belong to the service.
type PostgresDelegateStore struct {
	db *sql.DB
}

func NewPostgresDelegateStore(db *sql.DB) *PostgresDelegateStore {
	return &PostgresDelegateStore{db: db}
}

func (s *PostgresDelegateStore) Get(ctx context.Context, account, delegate id.AccountID) (*models.DelegateGrant, error) {
	query := `
		SELECT id, account, delegate, scope, granted_at
		FROM delegates
		WHERE account = $1 AND delegate = $2
	`
	grant, err := scanGrant(s.db.QueryRowContext(ctx, query, account.String(), delegate.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get delegate grant: %w", err)
	}
	return grant, nil
}

func (s *PostgresDelegateStore) Put(ctx context.Context, grant *models.DelegateGrant) error {
	query := `
		INSERT INTO delegates (id, account, delegate, scope, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account, delegate) DO UPDATE SET
			scope = EXCLUDED.scope,
			granted_at = EXCLUDED.granted_at
	`
	_, err := s.db.ExecContext(ctx, query,
		grant.ID,
		grant.Account.String(),
		grant.Delegate.String(),
		string(grant.Scope),
		grant.GrantedAt,
	)
	if err != nil {
		return fmt.Errorf("put delegate grant: %w", err)
	}
	return nil
}

func (s *PostgresDelegateStore) Delete(ctx context.Context, account, delegate id.AccountID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM delegates WHERE account = $1 AND delegate = $2`,
		account.String(), delegate.String(),
	)
	if err != nil {
		return false, fmt.Errorf("delete delegate grant: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete delegate grant rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *PostgresDelegateStore) List(ctx context.Context, account id.AccountID) ([]*models.DelegateGrant, error) {
	query := `
		SELECT id, account, delegate, scope, granted_at
		FROM delegates
		WHERE account = $1
		ORDER BY granted_at
	`
	rows, err := s.db.QueryContext(ctx, query, account.String())
	if err != nil {
		return nil, fmt.Errorf("list delegate grants: %w", err)
	}
	defer rows.Close()

	var out []*models.DelegateGrant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delegate grant: %w", err)
		}
		out = append(out, grant)
	}
	return out, rows.Err()
}

func (s *PostgresDelegateStore) Count(ctx context.Context, account id.AccountID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM delegates WHERE account = $1`,
		account.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count delegate grants: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGrant(row rowScanner) (*models.DelegateGrant, error) {
	var grant models.DelegateGrant
	var account, delegate, scope string
	if err := row.Scan(&grant.ID, &account, &delegate, &scope, &grant.GrantedAt); err != nil {
		return nil, err
	}
	grant.Account = id.AccountID(account)
	grant.Delegate = id.AccountID(delegate)
	grant.Scope = models.Scope(scope)
	return &grant, nil
}
