// Package sqlite keeps attendance snapshots in a single SQLite file for the
// command-line tool.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

const dateLayout = "2006-01-02"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS attendance_snapshots (
		snapshot_date TEXT PRIMARY KEY,
		saved_at      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		snapshot_date TEXT NOT NULL REFERENCES attendance_snapshots (snapshot_date) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		person_id     TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		department    TEXT NOT NULL DEFAULT '',
		shift         TEXT NOT NULL DEFAULT '',
		record_date   TEXT,
		status        TEXT NOT NULL DEFAULT '',
		in_time       TEXT NOT NULL DEFAULT '',
		duration      TEXT NOT NULL DEFAULT '',
		duration_min  INTEGER,
		remarks       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (snapshot_date, position)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_overrides (
		snapshot_date TEXT NOT NULL REFERENCES attendance_snapshots (snapshot_date) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		person_id     TEXT NOT NULL,
		name          TEXT NOT NULL DEFAULT '',
		override_date TEXT,
		status        TEXT NOT NULL,
		PRIMARY KEY (snapshot_date, position)
	)`,
}

type snapshotRepositoryImpl struct {
	db *sql.DB
}

// NewSnapshotRepository creates the tables when missing.
func NewSnapshotRepository(ctx context.Context, db *sql.DB) (attendance.SnapshotRepository, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &snapshotRepositoryImpl{db: db}, nil
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(dateLayout), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// parseNullDate falls back to def when the column is empty.
func parseNullDate(s sql.NullString, def time.Time) *time.Time {
	if s.Valid {
		if d, err := time.Parse(dateLayout, s.String); err == nil {
			return &d
		}
	}
	return &def
}

// Save implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) Save(ctx context.Context, date time.Time, snapshot attendance.Snapshot) error {
	key := normalize.DateOf(date).Format(dateLayout)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance_snapshots WHERE snapshot_date = ?", key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO attendance_snapshots (snapshot_date, saved_at) VALUES (?, ?)",
		key, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	recordStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_records (
			snapshot_date, position, person_id, name, department, shift,
			record_date, status, in_time, duration, duration_min, remarks
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recordStmt.Close()

	for i, rec := range snapshot.Records {
		if _, err := recordStmt.ExecContext(ctx,
			key, i, rec.PersonID, rec.Name, rec.Department, rec.Shift,
			nullDate(rec.Date), rec.Status, rec.InTime, rec.Duration, nullInt(rec.TotalDurationMinutes), rec.Remarks,
		); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	for i, o := range snapshot.Overrides {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_overrides (snapshot_date, position, person_id, name, override_date, status)
			VALUES (?, ?, ?, ?, ?, ?)`,
			key, i, o.PersonID, o.Name, nullDate(o.Date), o.Status,
		); err != nil {
			return fmt.Errorf("failed to insert override: %w", err)
		}
	}

	return tx.Commit()
}

// Load implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) Load(ctx context.Context, date time.Time) (*attendance.Snapshot, error) {
	date = normalize.DateOf(date)
	key := date.Format(dateLayout)

	var found string
	err := r.db.QueryRowContext(ctx, "SELECT snapshot_date FROM attendance_snapshots WHERE snapshot_date = ?", key).Scan(&found)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := &attendance.Snapshot{Date: date}

	rows, err := r.db.QueryContext(ctx, `
		SELECT person_id, name, department, shift, record_date, status, in_time, duration, duration_min, remarks
		FROM attendance_records
		WHERE snapshot_date = ?
		ORDER BY position`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec         attendance.Record
			recordDate  sql.NullString
			durationMin sql.NullInt64
		)
		if err := rows.Scan(
			&rec.PersonID, &rec.Name, &rec.Department, &rec.Shift, &recordDate,
			&rec.Status, &rec.InTime, &rec.Duration, &durationMin, &rec.Remarks,
		); err != nil {
			return nil, err
		}
		rec.Date = parseNullDate(recordDate, date)
		if durationMin.Valid {
			n := int(durationMin.Int64)
			rec.TotalDurationMinutes = &n
		}
		snapshot.Records = append(snapshot.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	odRows, err := r.db.QueryContext(ctx, `
		SELECT person_id, name, override_date, status
		FROM attendance_overrides
		WHERE snapshot_date = ?
		ORDER BY position`, key)
	if err != nil {
		return nil, err
	}
	defer odRows.Close()

	for odRows.Next() {
		var (
			o            attendance.Override
			overrideDate sql.NullString
		)
		if err := odRows.Scan(&o.PersonID, &o.Name, &overrideDate, &o.Status); err != nil {
			return nil, err
		}
		o.Date = parseNullDate(overrideDate, date)
		snapshot.Overrides = append(snapshot.Overrides, o)
	}
	if err := odRows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ListDates implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) ListDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT snapshot_date FROM attendance_snapshots ORDER BY snapshot_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// DeleteAll implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM attendance_snapshots")
	return err
}
