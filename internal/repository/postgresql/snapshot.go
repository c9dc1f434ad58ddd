package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/jackc/pgx/v5"
)

type snapshotRepositoryImpl struct {
	db *database.DB
}

func NewSnapshotRepository(db *database.DB) attendance.SnapshotRepository {
	return &snapshotRepositoryImpl{db: db}
}

// Save implements attendance.SnapshotRepository.
// The previous snapshot for date and its rows are removed by cascade.
func (r *snapshotRepositoryImpl) Save(ctx context.Context, date time.Time, snapshot attendance.Snapshot) error {
	date = normalize.DateOf(date)

	return RunInTx(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `DELETE FROM attendance_snapshots WHERE snapshot_date = $1`, date); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		if _, err := q.Exec(ctx, `INSERT INTO attendance_snapshots (snapshot_date) VALUES ($1)`, date); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		batch := &pgx.Batch{}
		for i, rec := range snapshot.Records {
			batch.Queue(`
				INSERT INTO attendance_records (
					snapshot_date, position, person_id, name, department, shift,
					record_date, status, in_time, duration, duration_min, remarks
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				date, i, rec.PersonID, rec.Name, rec.Department, rec.Shift,
				rec.Date, rec.Status, rec.InTime, rec.Duration, rec.TotalDurationMinutes, rec.Remarks,
			)
		}
		for i, o := range snapshot.Overrides {
			batch.Queue(`
				INSERT INTO attendance_overrides (snapshot_date, position, person_id, name, override_date, status)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				date, i, o.PersonID, o.Name, o.Date, o.Status,
			)
		}
		if batch.Len() == 0 {
			return nil
		}

		results := q.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert snapshot rows: %w", err)
			}
		}
		return results.Close()
	})
}

// Load implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) Load(ctx context.Context, date time.Time) (*attendance.Snapshot, error) {
	date = normalize.DateOf(date)
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM attendance_snapshots WHERE snapshot_date = $1)`, date).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	snapshot := &attendance.Snapshot{Date: date}

	rows, err := q.Query(ctx, `
		SELECT person_id, name, department, shift, record_date, status, in_time, duration, duration_min, remarks
		FROM attendance_records
		WHERE snapshot_date = $1
		ORDER BY position`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(
			&rec.PersonID,
			&rec.Name,
			&rec.Department,
			&rec.Shift,
			&rec.Date,
			&rec.Status,
			&rec.InTime,
			&rec.Duration,
			&rec.TotalDurationMinutes,
			&rec.Remarks,
		); err != nil {
			return nil, err
		}
		if rec.Date == nil {
			d := date
			rec.Date = &d
		}
		snapshot.Records = append(snapshot.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	odRows, err := q.Query(ctx, `
		SELECT person_id, name, override_date, status
		FROM attendance_overrides
		WHERE snapshot_date = $1
		ORDER BY position`, date)
	if err != nil {
		return nil, err
	}
	defer odRows.Close()

	for odRows.Next() {
		var o attendance.Override
		if err := odRows.Scan(&o.PersonID, &o.Name, &o.Date, &o.Status); err != nil {
			return nil, err
		}
		if o.Date == nil {
			d := date
			o.Date = &d
		}
		snapshot.Overrides = append(snapshot.Overrides, o)
	}
	if err := odRows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ListDates implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) ListDates(ctx context.Context) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT snapshot_date FROM attendance_snapshots ORDER BY snapshot_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, normalize.DateOf(d))
	}
	return dates, rows.Err()
}

// DeleteAll implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM attendance_snapshots`)
	return err
}
