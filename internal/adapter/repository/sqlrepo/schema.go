package sqlrepo

import (
	"context"
	"fmt"
)

// The DDL is portable between SQLite and PostgreSQL. Timestamps are TEXT so
// lexical order equals chronological order on both engines.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS wallet_allocations (
		id               TEXT PRIMARY KEY,
		symbol           TEXT NOT NULL,
		group_name       TEXT,
		barca            TEXT,
		target_percent   DOUBLE PRECISION,
		current_quantity DOUBLE PRECISION,
		last_price       DOUBLE PRECISION,
		notes            TEXT,
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_allocations_symbol_created
		ON wallet_allocations (symbol, created_at)`,

	`CREATE TABLE IF NOT EXISTS history_assets (
		timestamp          TEXT NOT NULL,
		symbol             TEXT NOT NULL,
		group_name         TEXT NOT NULL DEFAULT '',
		barca              TEXT NOT NULL DEFAULT '',
		price              DOUBLE PRECISION NOT NULL,
		current_quantity   DOUBLE PRECISION NOT NULL,
		value              DOUBLE PRECISION NOT NULL,
		target_percent     DOUBLE PRECISION NOT NULL,
		current_percent    DOUBLE PRECISION NOT NULL,
		market_cap         DOUBLE PRECISION NOT NULL DEFAULT 0,
		fdv                DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume_24h         DOUBLE PRECISION NOT NULL DEFAULT 0,
		percent_change_24h DOUBLE PRECISION NOT NULL DEFAULT 0,
		percent_change_7d  DOUBLE PRECISION NOT NULL DEFAULT 0,
		extra              TEXT,
		created_at         TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_history_assets
		ON history_assets (timestamp, symbol, group_name, barca)`,

	`CREATE TABLE IF NOT EXISTS history_groups (
		timestamp       TEXT NOT NULL,
		group_name      TEXT NOT NULL DEFAULT '',
		value           DOUBLE PRECISION NOT NULL,
		current_percent DOUBLE PRECISION NOT NULL,
		target_percent  DOUBLE PRECISION NOT NULL,
		extra           TEXT,
		created_at      TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_history_groups
		ON history_groups (timestamp, group_name)`,

	`CREATE TABLE IF NOT EXISTS history_barca (
		timestamp       TEXT NOT NULL,
		barca           TEXT NOT NULL DEFAULT '',
		value           DOUBLE PRECISION NOT NULL,
		current_percent DOUBLE PRECISION NOT NULL,
		target_percent  DOUBLE PRECISION NOT NULL,
		extra           TEXT,
		created_at      TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_history_barca
		ON history_barca (timestamp, barca)`,

	`CREATE TABLE IF NOT EXISTS history_totals (
		timestamp   TEXT PRIMARY KEY,
		total_value DOUBLE PRECISION NOT NULL,
		extra       TEXT,
		created_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS allocations (
		id          TEXT PRIMARY KEY,
		computed_at TEXT NOT NULL,
		payload     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_allocations_computed_at
		ON allocations (computed_at)`,
}

// Migrate creates every table and index that does not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
