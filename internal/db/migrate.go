package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS order_types (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		name      TEXT NOT NULL UNIQUE,
		term_days INTEGER NOT NULL CHECK(term_days > 0)
	)`,

	// Seed the standard order types; term_days is the business-day
	// deadline applied to every hand-off of that order type.
	`INSERT OR IGNORE INTO order_types (name, term_days) VALUES
		('new_development', 10),
		('duplicate', 5),
		('repair_modification', 3)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		reference          TEXT NOT NULL UNIQUE,
		name               TEXT NOT NULL DEFAULT '',
		workshop           TEXT NOT NULL DEFAULT '',
		type_id            INTEGER NOT NULL REFERENCES order_types(id),
		is_by_memo         INTEGER NOT NULL DEFAULT 0,
		memo_number        TEXT NOT NULL DEFAULT '',
		memo_author        TEXT NOT NULL DEFAULT '',
		manufacturing_term TEXT,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS approval_steps (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id        INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		parent_id       INTEGER REFERENCES approval_steps(id),
		receipt_date    TEXT NOT NULL,
		completion_date TEXT,
		deadline        TEXT NOT NULL,
		recipient_role  TEXT NOT NULL,
		recipient_name  TEXT NOT NULL,
		sender_role     TEXT NOT NULL DEFAULT '',
		sender_name     TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'in_progress'
		                CHECK(status IN ('in_progress','done')),
		result          TEXT
		                CHECK(result IN ('approved','rejected')),
		comment         TEXT NOT NULL DEFAULT '',
		is_rework       INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_approval_steps_order ON approval_steps(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_approval_steps_recipient ON approval_steps(order_id, recipient_name)`,
	`CREATE INDEX IF NOT EXISTS idx_approval_steps_parent ON approval_steps(parent_id)`,

	// Working-day calendar consumed by deadline computation.
	`CREATE TABLE IF NOT EXISTS calendar_days (
		day        TEXT PRIMARY KEY,
		is_working INTEGER NOT NULL DEFAULT 1
	)`,

	// Role directory: who holds which role, and who a role's hand-offs
	// go to by default.
	`CREATE TABLE IF NOT EXISTS users (
		name       TEXT PRIMARY KEY,
		role       TEXT NOT NULL
		           CHECK(role IN ('technologist','order_manager','head_order_department')),
		is_default INTEGER NOT NULL DEFAULT 0
	)`,
}
