package store

import "fmt"

// migrate creates all tables if they don't exist.
// Every statement is idempotent so migrate can run on every open.
func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL,
			kind        TEXT NOT NULL CHECK (kind IN ('income', 'expense', 'transfer')),
			amount      TEXT NOT NULL,
			category    TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions(owner_id, occurred_at)`,

		`CREATE TABLE IF NOT EXISTS targets (
			id             TEXT PRIMARY KEY,
			owner_id       TEXT NOT NULL,
			title          TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			target_amount  TEXT NOT NULL,
			current_amount TEXT NOT NULL DEFAULT '0',
			currency       TEXT NOT NULL,
			target_date    TEXT,
			status         TEXT NOT NULL DEFAULT 'active',
			target_type    TEXT NOT NULL CHECK (target_type IN ('savings', 'budget')),
			category       TEXT NOT NULL DEFAULT '',
			priority       INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_targets_owner ON targets(owner_id, status)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			owner_id   TEXT PRIMARY KEY,
			plan       TEXT NOT NULL DEFAULT 'free',
			status     TEXT NOT NULL DEFAULT 'active',
			updated_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
