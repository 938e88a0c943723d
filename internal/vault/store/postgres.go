package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coffer/internal/vault/models"
	id "coffer/pkg/domain"
)

// PostgresVaultStore persists vault records and per-account id counters in
// PostgreSQL. Pure I/O; the state machine belongs to the service. Optional
// timestamps are stored as NULL.
type PostgresVaultStore struct {
	db *sql.DB
}

func NewPostgresVaultStore(db *sql.DB) *PostgresVaultStore {
	return &PostgresVaultStore{db: db}
}

func (s *PostgresVaultStore) Get(ctx context.Context, account id.AccountID, vaultID id.VaultID) (*models.Vault, error) {
	query := `
		SELECT account, vault_id, name, goal, target_date, lock_policy, state, balance, created_at, matured_at
		FROM vaults
		WHERE account = $1 AND vault_id = $2
	`
	vault, err := scanVault(s.db.QueryRowContext(ctx, query, account.String(), uint64(vaultID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get vault: %w", err)
	}
	return vault, nil
}

func (s *PostgresVaultStore) Put(ctx context.Context, vault *models.Vault) error {
	query := `
		INSERT INTO vaults (account, vault_id, name, goal, target_date, lock_policy, state, balance, created_at, matured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (account, vault_id) DO UPDATE SET
			name = EXCLUDED.name,
			goal = EXCLUDED.goal,
			target_date = EXCLUDED.target_date,
			lock_policy = EXCLUDED.lock_policy,
			state = EXCLUDED.state,
			balance = EXCLUDED.balance,
			matured_at = EXCLUDED.matured_at
	`
	_, err := s.db.ExecContext(ctx, query,
		vault.Account.String(),
		uint64(vault.ID),
		vault.Name,
		vault.Goal,
		nullableTime(vault.TargetDate),
		string(vault.LockPolicy),
		string(vault.State),
		vault.Balance,
		vault.CreatedAt,
		nullableTime(vault.MaturedAt),
	)
	if err != nil {
		return fmt.Errorf("put vault: %w", err)
	}
	return nil
}

func (s *PostgresVaultStore) List(ctx context.Context, account id.AccountID) ([]*models.Vault, error) {
	query := `
		SELECT account, vault_id, name, goal, target_date, lock_policy, state, balance, created_at, matured_at
		FROM vaults
		WHERE account = $1
		ORDER BY vault_id
	`
	rows, err := s.db.QueryContext(ctx, query, account.String())
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	defer rows.Close()

	var out []*models.Vault
	for rows.Next() {
		vault, err := scanVault(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault: %w", err)
		}
		out = append(out, vault)
	}
	return out, rows.Err()
}

func (s *PostgresVaultStore) CountOpen(ctx context.Context, account id.AccountID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vaults WHERE account = $1 AND state != 'closed'`,
		account.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open vaults: %w", err)
	}
	return n, nil
}

func (s *PostgresVaultStore) NextID(ctx context.Context, account id.AccountID) (id.VaultID, error) {
	var next uint64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO vault_counters (account, next_id)
		VALUES ($1, 1)
		ON CONFLICT (account) DO UPDATE SET next_id = vault_counters.next_id + 1
		RETURNING next_id
	`, account.String()).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocate vault id: %w", err)
	}
	return id.VaultID(next), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVault(row rowScanner) (*models.Vault, error) {
	var vault models.Vault
	var account, policy, state string
	var vaultID uint64
	var targetDate, maturedAt sql.NullTime
	if err := row.Scan(
		&account, &vaultID, &vault.Name, &vault.Goal, &targetDate,
		&policy, &state, &vault.Balance, &vault.CreatedAt, &maturedAt,
	); err != nil {
		return nil, err
	}
	vault.Account = id.AccountID(account)
	vault.ID = id.VaultID(vaultID)
	vault.LockPolicy = models.LockPolicy(policy)
	vault.State = models.State(state)
	if targetDate.Valid {
		vault.TargetDate = targetDate.Time
	}
	if maturedAt.Valid {
		vault.MaturedAt = maturedAt.Time
	}
	return &vault, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
