// Package postgres owns SQL connection setup and schema bootstrap for the
// postgres-backed stores.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"coffer/internal/platform/config"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Schema is the DDL for all coffer tables. Stores are pure I/O over these
// tables; domain rules live in the services.
const Schema = `
CREATE TABLE IF NOT EXISTS budgets (
	account       TEXT PRIMARY KEY,
	category      TEXT NOT NULL DEFAULT '',
	limit_amount  BIGINT NOT NULL,
	period_kind   TEXT NOT NULL,
	period_length BIGINT NOT NULL DEFAULT 0,
	period_start  TIMESTAMPTZ NOT NULL,
	spent         BIGINT NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS vaults (
	account      TEXT NOT NULL,
	vault_id     BIGINT NOT NULL,
	name         TEXT NOT NULL DEFAULT '',
	goal         BIGINT NOT NULL,
	target_date  TIMESTAMPTZ,
	lock_policy  TEXT NOT NULL,
	state        TEXT NOT NULL,
	balance      BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL,
	matured_at   TIMESTAMPTZ,
	PRIMARY KEY (account, vault_id)
);

CREATE TABLE IF NOT EXISTS vault_counters (
	account  TEXT PRIMARY KEY,
	next_id  BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS delegates (
	id         UUID PRIMARY KEY,
	account    TEXT NOT NULL,
	delegate   TEXT NOT NULL,
	scope      TEXT NOT NULL,
	granted_at TIMESTAMPTZ NOT NULL,
	UNIQUE (account, delegate)
);

CREATE TABLE IF NOT EXISTS history (
	id       UUID PRIMARY KEY,
	account  TEXT NOT NULL,
	action   TEXT NOT NULL,
	amount   BIGINT NOT NULL DEFAULT 0,
	vault_id BIGINT,
	at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS history_account_at_idx ON history (account, at DESC);
`

// EnsureSchema applies the DDL. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
