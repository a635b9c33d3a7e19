package project

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one versioned schema step.
type Migration struct {
	Version int
	UpSQL   string
	DownSQL string
}

var migrations = []Migration{
	{
		Version: 1,
		UpSQL: `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	project_id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	epsilon REAL NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tracks (
	project_id TEXT NOT NULL,
	track_order INTEGER NOT NULL,
	track_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('video','audio')),
	label TEXT NOT NULL,
	PRIMARY KEY(project_id, track_order),
	FOREIGN KEY(project_id) REFERENCES projects(project_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sources (
	project_id TEXT NOT NULL,
	source_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('video','audio','image','effect')),
	name TEXT NOT NULL,
	handle TEXT NOT NULL DEFAULT '',
	duration REAL NOT NULL DEFAULT 0,
	effect TEXT NOT NULL DEFAULT 'none',
	intensity REAL NOT NULL DEFAULT 0,
	PRIMARY KEY(project_id, source_id),
	FOREIGN KEY(project_id) REFERENCES projects(project_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS items (
	project_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	source_id TEXT NOT NULL,
	track_order INTEGER NOT NULL,
	start REAL NOT NULL,
	duration REAL NOT NULL,
	media_offset REAL NOT NULL DEFAULT 0,
	volume REAL NOT NULL DEFAULT 100,
	PRIMARY KEY(project_id, item_id),
	FOREIGN KEY(project_id) REFERENCES projects(project_id) ON DELETE CASCADE,
	FOREIGN KEY(project_id, source_id) REFERENCES sources(project_id, source_id)
);

CREATE INDEX IF NOT EXISTS items_project_track_start
ON items(project_id, track_order, start);

CREATE INDEX IF NOT EXISTS projects_updated_at
ON projects(updated_at DESC);
`,
		DownSQL: `
DROP INDEX IF EXISTS projects_updated_at;
DROP INDEX IF EXISTS items_project_track_start;
DROP TABLE IF EXISTS items;
DROP TABLE IF EXISTS sources;
DROP TABLE IF EXISTS tracks;
DROP TABLE IF EXISTS projects;
DROP TABLE IF EXISTS schema_migrations;
`,
	},
}

// ApplyMigrations brings the database schema up to the current version.
// Already-applied versions are skipped, each new one runs in its own
// transaction.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations(version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.Version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES (?, datetime('now'))`, m.Version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// RollbackAll unwinds every migration, newest first. Used by tests.
func RollbackAll(ctx context.Context, db *sql.DB) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin rollback tx %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("rollback migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit rollback %d: %w", m.Version, err)
		}
	}
	return nil
}
