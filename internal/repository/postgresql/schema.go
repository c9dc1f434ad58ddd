package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_snapshots (
		snapshot_date DATE PRIMARY KEY,
		saved_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		snapshot_date  DATE NOT NULL REFERENCES attendance_snapshots (snapshot_date) ON DELETE CASCADE,
		position       INT NOT NULL,
		person_id      TEXT NOT NULL,
		name           TEXT NOT NULL DEFAULT '',
		department     TEXT NOT NULL DEFAULT '',
		shift          TEXT NOT NULL DEFAULT '',
		record_date    DATE,
		status         TEXT NOT NULL DEFAULT '',
		in_time        TEXT NOT NULL DEFAULT '',
		duration       TEXT NOT NULL DEFAULT '',
		duration_min   INT,
		remarks        TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (snapshot_date, position)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_overrides (
		snapshot_date DATE NOT NULL REFERENCES attendance_snapshots (snapshot_date) ON DELETE CASCADE,
		position      INT NOT NULL,
		person_id     TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		override_date DATE,
		status        TEXT NOT NULL,
		PRIMARY KEY (snapshot_date, position)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_submissions (
		id              TEXT PRIMARY KEY,
		submitted_at    TIMESTAMP NOT NULL,
		person_id       TEXT NOT NULL,
		name            TEXT NOT NULL,
		attendance_type TEXT NOT NULL,
		reason          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_submissions_submitted_at ON attendance_submissions (submitted_at)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_submissions_person_id ON attendance_submissions (person_id)`,
}

// EnsureSchema creates the tables used by this package when they are missing.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
