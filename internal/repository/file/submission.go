package file

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
)

var submissionFileRegex = regexp.MustCompile(`^attendance_(\d{4}-\d{2}-\d{2})\.csv$`)

// submissionHeader extends the form log layout with the submission id.
var submissionHeader = append(append([]string(nil), attendance.SubmissionHeader...), "Submission ID")

func submissionFile(date time.Time) string {
	return "attendance_" + date.Format("2006-01-02") + ".csv"
}

type submissionRepositoryImpl struct {
	storage storage.FileStorage
	mu      sync.Mutex
}

func NewSubmissionRepository(fs storage.FileStorage) attendance.SubmissionRepository {
	return &submissionRepositoryImpl{storage: fs}
}

func (r *submissionRepositoryImpl) readDay(ctx context.Context, name string) ([]attendance.Submission, error) {
	grid, err := readGrid(ctx, r.storage, name)
	if err != nil || len(grid) == 0 {
		return nil, err
	}

	var out []attendance.Submission
	for _, row := range grid[1:] {
		line := append([]string(nil), row...)
		for len(line) < len(submissionHeader) {
			line = append(line, "")
		}
		ts, err := time.Parse("2006-01-02 15:04:05", line[0])
		if err != nil {
			continue
		}
		out = append(out, attendance.Submission{
			Timestamp: ts,
			PersonID:  normalize.Identifier(line[1]),
			Name:      normalize.Name(line[2]),
			Type:      line[3],
			Reason:    line[4],
			ID:        line[5],
		})
	}
	return out, nil
}

// Append implements attendance.SubmissionRepository. The day's file is
// rewritten in full.
func (r *submissionRepositoryImpl) Append(ctx context.Context, submission attendance.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := submissionFile(submission.Date())
	existing, err := r.readDay(ctx, name)
	if err != nil {
		return err
	}
	existing = append(existing, submission)

	rows := make([][]string, 0, len(existing))
	for _, s := range existing {
		rows = append(rows, append(s.Values(), s.ID))
	}
	return writeGrid(ctx, r.storage, name, submissionHeader, rows)
}

// ListByDate implements attendance.SubmissionRepository.
func (r *submissionRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readDay(ctx, submissionFile(normalize.DateOf(date)))
}

// List implements attendance.SubmissionRepository.
func (r *submissionRepositoryImpl) List(ctx context.Context) ([]attendance.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.storage.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var all []attendance.Submission
	for _, name := range names {
		if !submissionFileRegex.MatchString(name) {
			continue
		}
		day, err := r.readDay(ctx, name)
		if err != nil {
			return nil, err
		}
		all = append(all, day...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })
	return all, nil
}

// DeleteAll implements attendance.SubmissionRepository.
func (r *submissionRepositoryImpl) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return deleteMatching(ctx, r.storage, submissionFileRegex)
}
