package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*storage.LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return fs, dir
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	fs, dir := newStorage(t)
	repo := NewSnapshotRepository(fs)

	d := date("2024-01-01")
	snapshot := attendance.Snapshot{
		Date: d,
		Records: []attendance.Record{
			{PersonID: "A1", Name: "Asha, K", Department: "Sales", Shift: "GS", Date: &d, Status: "PRESENT", InTime: "09:10:00", Duration: "06:00", Remarks: "ok"},
			{PersonID: "B1", Name: "Bala", Department: "Ops", Date: &d, Status: "ABSENT"},
		},
		Overrides: []attendance.Override{{PersonID: "B1", Name: "Bala", Date: &d, Status: "OD"}},
	}
	require.NoError(t, repo.Save(ctx, d, snapshot))

	_, err := os.Stat(filepath.Join(dir, "erp_2024-01-01.csv"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "od_2024-01-01.csv"))
	require.NoError(t, err)

	loaded, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snapshot.Records, loaded.Records)
	assert.Equal(t, snapshot.Overrides, loaded.Overrides)
}

func TestSnapshotRepository_KeepsMinutesDuration(t *testing.T) {
	ctx := context.Background()
	fs, _ := newStorage(t)
	repo := NewSnapshotRepository(fs)

	d := date("2024-01-04")
	minutes := 300
	snapshot := attendance.Snapshot{
		Records: []attendance.Record{
			{PersonID: "X1", Name: "Ira", Date: &d, Status: "PRESENT", InTime: "09:05:00", TotalDurationMinutes: &minutes},
			{PersonID: "X2", Name: "Jo", Date: &d, Status: "PRESENT", Duration: "07:00"},
		},
	}
	require.NoError(t, repo.Save(ctx, d, snapshot))

	loaded, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Records, 2)
	require.NotNil(t, loaded.Records[0].TotalDurationMinutes)
	assert.Equal(t, 300, *loaded.Records[0].TotalDurationMinutes)
	assert.Equal(t, "07:00", loaded.Records[1].Duration)
	assert.Nil(t, loaded.Records[1].TotalDurationMinutes)
}

// failingRecordStorage fails every write of a record file.
type failingRecordStorage struct {
	*storage.LocalStorage
}

func (f failingRecordStorage) Put(ctx context.Context, path string, content io.Reader) error {
	if strings.HasPrefix(path, "erp_") {
		return errors.New("disk full")
	}
	return f.LocalStorage.Put(ctx, path, content)
}

func TestSnapshotRepository_FailedSaveKeepsPreviousPair(t *testing.T) {
	ctx := context.Background()
	fs, dir := newStorage(t)
	d := date("2024-01-05")

	original := attendance.Snapshot{
		Records:   []attendance.Record{{PersonID: "A1", Date: &d, Status: "ABSENT"}},
		Overrides: []attendance.Override{{PersonID: "A1", Date: &d, Status: "OD"}},
	}
	require.NoError(t, NewSnapshotRepository(fs).Save(ctx, d, original))

	broken := NewSnapshotRepository(failingRecordStorage{fs})
	err := broken.Save(ctx, d, attendance.Snapshot{
		Records:   []attendance.Record{{PersonID: "B1", Date: &d, Status: "ABSENT"}},
		Overrides: []attendance.Override{{PersonID: "B1", Date: &d, Status: "CL"}},
	})
	require.Error(t, err)

	loaded, err := NewSnapshotRepository(fs).Load(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original.Records, loaded.Records)
	assert.Equal(t, original.Overrides, loaded.Overrides)

	fresh := date("2024-01-06")
	err = broken.Save(ctx, fresh, attendance.Snapshot{
		Records:   []attendance.Record{{PersonID: "C1", Date: &fresh, Status: "ABSENT"}},
		Overrides: []attendance.Override{{PersonID: "C1", Date: &fresh, Status: "OD"}},
	})
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "od_2024-01-06.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSnapshotRepository_ReplaceAndMissing(t *testing.T) {
	ctx := context.Background()
	fs, dir := newStorage(t)
	repo := NewSnapshotRepository(fs)
	d := date("2024-01-02")

	missing, err := repo.Load(ctx, d)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{
		Records:   []attendance.Record{{PersonID: "A1", Date: &d, Status: "ABSENT"}},
		Overrides: []attendance.Override{{PersonID: "A1", Date: &d, Status: "OD"}},
	}))
	require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{
		Records: []attendance.Record{{PersonID: "C1", Date: &d, Status: "PRESENT"}},
	}))

	loaded, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, "C1", loaded.Records[0].PersonID)
	assert.Empty(t, loaded.Overrides, "stale override file removed")

	_, err = os.Stat(filepath.Join(dir, "od_2024-01-02.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestSnapshotRepository_ListAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	fs, dir := newStorage(t)
	repo := NewSnapshotRepository(fs)

	for _, s := range []string{"2024-01-03", "2023-12-31", "2024-01-01"} {
		d := date(s)
		require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{Records: []attendance.Record{{PersonID: "A", Date: &d}}}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	dates, err := repo.ListDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2023-12-31", dates[0].Format("2006-01-02"))
	assert.Equal(t, "2024-01-03", dates[2].Format("2006-01-02"))

	require.NoError(t, repo.DeleteAll(ctx))
	dates, err = repo.ListDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)

	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err, "unrelated files are kept")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	fs, _ := newStorage(t)
	repo := NewUserRepository(fs)

	_, err := repo.GetByID(ctx, "U1")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	stored, created, err := repo.CreateIfAbsent(ctx, user.User{ID: "U1", PasswordHash: "h1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "h1", stored.PasswordHash)

	stored, created, err = repo.CreateIfAbsent(ctx, user.User{ID: "U1", PasswordHash: "other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "h1", stored.PasswordHash, "existing user is not overwritten")

	require.NoError(t, repo.UpdateFullName(ctx, "U1", "Uma"))
	require.NoError(t, repo.UpdatePasswordHash(ctx, "U1", "h2"))
	assert.ErrorIs(t, repo.UpdateFullName(ctx, "NOPE", "x"), user.ErrUserNotFound)

	// A second repository over the same directory sees the persisted file.
	reopened := NewUserRepository(fs)
	u, err := reopened.GetByID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "Uma", u.FullName)
	assert.Equal(t, "h2", u.PasswordHash)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, repo.DeleteAll(ctx))
	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	fs, _ := newStorage(t)
	repo := NewUserRepository(fs)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.CreateIfAbsent(ctx, user.User{ID: "SAME", PasswordHash: "h"})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestSubmissionRepository(t *testing.T) {
	ctx := context.Background()
	fs, dir := newStorage(t)
	repo := NewSubmissionRepository(fs)

	first := attendance.Submission{ID: "s1", Timestamp: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), PersonID: "P1", Name: "Priya", Type: "OD", Reason: "expo, day 1"}
	second := attendance.Submission{ID: "s2", Timestamp: time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC), PersonID: "P2", Name: "Ravi", Type: "SSL"}
	earlier := attendance.Submission{ID: "s0", Timestamp: time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC), PersonID: "P1", Name: "Priya", Type: "Permission"}

	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, earlier))

	_, err := os.Stat(filepath.Join(dir, "attendance_2024-01-02.csv"))
	require.NoError(t, err)

	day, err := repo.ListByDate(ctx, date("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, []attendance.Submission{first, second}, day)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []attendance.Submission{earlier, first, second}, all)

	none, err := repo.ListByDate(ctx, date("2024-02-01"))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
