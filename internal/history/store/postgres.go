package store

import (
	"context"
	"database/sql"
	"fmt"

	"coffer/internal/history/models"
	id "coffer/pkg/domain"
	"coffer/pkg/platform/events"
)

// PostgresHistoryStore persists history entries in PostgreSQL.
type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, entry *models.Entry) error {
	var vaultID any
	if entry.VaultID != nil {
		vaultID = uint64(*entry.VaultID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, account, action, amount, vault_id, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		entry.ID,
		entry.Account.String(),
		string(entry.Action),
		entry.Amount,
		vaultID,
		entry.At,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

func (s *PostgresHistoryStore) ListByAccount(ctx context.Context, account id.AccountID, limit int) ([]*models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account, action, amount, vault_id, at
		FROM history
		WHERE account = $1
		ORDER BY at DESC, id
		LIMIT $2
	`, account.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []*models.Entry
	for rows.Next() {
		var entry models.Entry
		var acct, action string
		var vaultID sql.NullInt64
		if err := rows.Scan(&entry.ID, &acct, &action, &entry.Amount, &vaultID, &entry.At); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Account = id.AccountID(acct)
		entry.Action = events.Action(action)
		if vaultID.Valid {
			v := id.VaultID(vaultID.Int64)
			entry.VaultID = &v
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}
