package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in PRAGMA user_version. Bump it only when the
// table or index layout changes, and add the step to migrations.
const SchemaVersion = 1

const createPlans = `CREATE TABLE IF NOT EXISTS plans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    plan_key TEXT NOT NULL,
    plan_type TEXT NOT NULL CHECK (plan_type IN ('day', 'week', 'month', 'year')),
    content TEXT NOT NULL DEFAULT '',
    timestamp INTEGER NOT NULL
);`

// One note per period instance: (key, type) is unique, key alone is not.
const (
	idxPlansKey       = `CREATE INDEX IF NOT EXISTS idx_plans_key ON plans(plan_key);`
	idxPlansType      = `CREATE INDEX IF NOT EXISTS idx_plans_type ON plans(plan_type);`
	idxPlansKeyType   = `CREATE UNIQUE INDEX IF NOT EXISTS idx_plans_key_type ON plans(plan_key, plan_type);`
	idxPlansTimestamp = `CREATE INDEX IF NOT EXISTS idx_plans_timestamp ON plans(timestamp);`
)

// migrations[i] brings a database from version i to i+1. Every statement is
// check-before-create so a step may be replayed safely.
var migrations = [][]string{
	{createPlans, idxPlansKey, idxPlansType, idxPlansKeyType, idxPlansTimestamp},
}

// migrate applies pending migrations in one transaction and returns the
// resulting schema version.
func migrate(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning migration: %w", err)
	}
	defer tx.Rollback()

	var current int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if current > SchemaVersion {
		return current, fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	if current == SchemaVersion {
		return current, nil
	}

	for v := current; v < SchemaVersion; v++ {
		for _, stmt := range migrations[v] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return current, fmt.Errorf("migrating to version %d: %w", v+1, err)
			}
		}
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return current, fmt.Errorf("writing schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return current, fmt.Errorf("committing migration: %w", err)
	}
	return SchemaVersion, nil
}
