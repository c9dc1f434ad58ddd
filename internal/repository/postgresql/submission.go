package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/jackc/pgx/v5"
)

type submissionRepositoryImpl struct {
	db *database.DB
}

func NewSubmissionRepository(db *database.DB) attendance.SubmissionRepository {
	return &submissionRepositoryImpl{db: db}
}

// Append implements attendance.SubmissionRepository.
// submitted_at holds wall-clock time without a zone, matching the CSV log.
func (r *submissionRepositoryImpl) Append(ctx context.Context, submission attendance.Submission) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_submissions (id, submitted_at, person_id, name, attendance_type, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	ts := submission.Timestamp
	wall := time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, time.UTC)

	_, err := q.Exec(ctx, query,
		submission.ID,
		wall,
		submission.PersonID,
		submission.Name,
		submission.Type,
		submission.Reason,
	)
	return err
}

func scanSubmissions(rows pgx.Rows) ([]attendance.Submission, error) {
	defer rows.Close()

	var out []attendance.Submission
	for rows.Next() {
		var s attendance.Submission
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.PersonID, &s.Name, &s.Type, &s.Reason); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByDate implements attendance.SubmissionRepository.
func (r *submissionRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.Submission, error) {
	q := GetQuerier(ctx, r.db)

	day := normalize.DateOf(date)
	rows, err := q.Query(ctx, `
		SELECT id, submitted_at, person_id, name, attendance_type, reason
		FROM attendance_submissions
		WHERE submitted_at >= $1 AND submitted_at < $2
		ORDER BY submitted_at, id
	`, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return scanSubmissions(rows)
}

// List implements attendance.SubmissionRepository.
func (r *submissionRepositoryImpl) List(ctx context.Context) ([]attendance.Submission, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, submitted_at, person_id, name, attendance_type, reason
		FROM attendance_submissions
		ORDER BY submitted_at, id
	`)
	if err != nil {
		return nil, err
	}
	return scanSubmissions(rows)
}

// DeleteAll implements attendance.SubmissionRepository.
func (r *submissionRepositoryImpl) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM attendance_submissions`)
	return err
}
