package repository

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// DB wraps the sql connection pool used by the repositories
type DB struct {
	*sql.DB
}

// NewDB opens a Postgres connection pool and verifies connectivity
func NewDB(databaseURL string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

// Migrate creates the jobs and job_events tables if they don't exist. The
// partial unique index on current_address enforces the at-most-one-awaiting-
// job-per-address invariant at write time.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		location TEXT NOT NULL,
		candidates JSONB NOT NULL,
		cursor_index INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		current_candidate JSONB,
		current_address TEXT,
		accepted_by JSONB,
		booking JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS jobs_awaiting_address_idx
		ON jobs (current_address)
		WHERE status = 'awaiting_response';

	CREATE TABLE IF NOT EXISTS job_events (
		id BIGSERIAL PRIMARY KEY,
		job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		from_status TEXT,
		to_status TEXT NOT NULL,
		reason TEXT NOT NULL,
		at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS job_events_job_id_idx ON job_events (job_id);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}
