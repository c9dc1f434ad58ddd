package attendance

import (
	"context"
	"time"
)

// SnapshotRepository persists one immutable table per calendar date.
// Save replaces any earlier snapshot for the same date in full.
type SnapshotRepository interface {
	// Save stores the source records and overrides for date, replacing prior data
	Save(ctx context.Context, date time.Time, snapshot Snapshot) error

	// Load returns nil, nil when nothing is stored for date
	Load(ctx context.Context, date time.Time) (*Snapshot, error)

	// ListDates returns the stored dates in ascending order
	ListDates(ctx context.Context) ([]time.Time, error)

	// DeleteAll discards every snapshot
	DeleteAll(ctx context.Context) error
}

// SubmissionRepository persists the marking-form log.
type SubmissionRepository interface {
	Append(ctx context.Context, submission Submission) error
	ListByDate(ctx context.Context, date time.Time) ([]Submission, error)
	List(ctx context.Context) ([]Submission, error)
	DeleteAll(ctx context.Context) error
}
