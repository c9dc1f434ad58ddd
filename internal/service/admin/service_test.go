package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReset_FileStore(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	snapshots := file.NewSnapshotRepository(fs)
	submissions := file.NewSubmissionRepository(fs)
	users := file.NewUserRepository(fs)

	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, snapshots.Save(ctx, d, attendance.Snapshot{Records: []attendance.Record{{PersonID: "A1", Date: &d}}}))
	require.NoError(t, submissions.Append(ctx, attendance.Submission{ID: "s1", Timestamp: d.Add(9 * time.Hour), PersonID: "A1", Name: "Asha", Type: "SSL"}))
	_, _, err = users.CreateIfAbsent(ctx, user.User{ID: "A1", PasswordHash: "h"})
	require.NoError(t, err)

	svc := NewResetService(snapshots, submissions, users, nil)
	require.NoError(t, svc.Reset(ctx))

	dates, err := snapshots.ListDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)

	all, err := submissions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingUsers struct {
	user.UserRepository
}

func (failingUsers) DeleteAll(context.Context) error { return errors.New("disk full") }

func TestReset_PropagatesUnitOfWorkError(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	var ran bool
	uow := func(ctx context.Context, fn func(ctx context.Context) error) error {
		ran = true
		return fn(ctx)
	}

	svc := NewResetService(file.NewSnapshotRepository(fs), file.NewSubmissionRepository(fs), failingUsers{}, uow)
	err = svc.Reset(ctx)

	assert.True(t, ran)
	assert.ErrorContains(t, err, "failed to delete users")
}
