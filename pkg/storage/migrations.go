package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; a migration never changes once released.
var migrations = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		google_subject TEXT,
		token BLOB,
		created_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX idx_users_subject ON users(google_subject) WHERE google_subject IS NOT NULL;

	CREATE TABLE sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX idx_sessions_expiry ON sessions(expires_at);`,

	`CREATE TABLE goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		field TEXT NOT NULL,
		description TEXT NOT NULL,
		deadline TEXT NOT NULL,
		days_per_week INTEGER NOT NULL,
		hours_per_day REAL NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		materials TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX idx_goals_user ON goals(user_id, created_at);

	CREATE TABLE schedules (
		id TEXT PRIMARY KEY,
		goal_id TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		is_complete INTEGER NOT NULL DEFAULT 0,
		progress REAL NOT NULL DEFAULT 0,
		UNIQUE(goal_id, date)
	);

	CREATE TABLE tasks (
		id TEXT PRIMARY KEY,
		goal_id TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX idx_tasks_schedule ON tasks(schedule_id);`,

	`CREATE TABLE generations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		model TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		source TEXT NOT NULL,
		task_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX idx_generations_user ON generations(user_id, created_at);`,
}

// migrate brings the schema up to date inside one transaction per step.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the number of applied migrations.
func (r *SQLiteRepository) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}
