package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) attendance.SnapshotRepository {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSnapshotRepository(context.Background(), db)
	require.NoError(t, err)
	return repo
}

func day(s string) time.Time {
	d, _ := time.Parse(dateLayout, s)
	return d
}

func TestSnapshotRepository_SaveLoad(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	d := day("2024-01-01")
	mins := 360
	snapshot := attendance.Snapshot{
		Records: []attendance.Record{
			{PersonID: "A1", Name: "Asha", Department: "Sales", Shift: "GS", Date: &d, Status: "PRESENT", InTime: "09:05", TotalDurationMinutes: &mins},
			{PersonID: "B1", Name: "Bala", Department: "Ops", Shift: "GS", Date: &d, Status: "ABSENT"},
		},
		Overrides: []attendance.Override{{PersonID: "B1", Name: "Bala", Date: &d, Status: "OD"}},
	}
	require.NoError(t, repo.Save(ctx, d, snapshot))

	loaded, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snapshot.Records, loaded.Records)
	assert.Equal(t, snapshot.Overrides, loaded.Overrides)
}

func TestSnapshotRepository_ReplaceAndMissing(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	d := day("2024-01-02")

	missing, err := repo.Load(ctx, d)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{
		Records:   []attendance.Record{{PersonID: "A1", Date: &d}, {PersonID: "A2", Date: &d}},
		Overrides: []attendance.Override{{PersonID: "A1", Date: &d, Status: "OD"}},
	}))
	require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{
		Records: []attendance.Record{{PersonID: "C1", Date: &d}},
	}))

	loaded, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, "C1", loaded.Records[0].PersonID)
	assert.Empty(t, loaded.Overrides)
}

func TestSnapshotRepository_UndatedRowsTakeSnapshotDate(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	d := day("2024-01-05")

	require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{Records: []attendance.Record{{PersonID: "A1"}}}))

	loaded, err := repo.Load(ctx, d)
	require.NoError(t, err)
	require.Len(t, loaded.Records, 1)
	require.NotNil(t, loaded.Records[0].Date)
	assert.True(t, loaded.Records[0].Date.Equal(d))
}

func TestSnapshotRepository_ListAndDeleteAll(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, s := range []string{"2024-01-03", "2023-12-31", "2024-01-01"} {
		d := day(s)
		require.NoError(t, repo.Save(ctx, d, attendance.Snapshot{Records: []attendance.Record{{PersonID: "A", Date: &d}}}))
	}

	dates, err := repo.ListDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2023-12-31", dates[0].Format(dateLayout))
	assert.Equal(t, "2024-01-03", dates[2].Format(dateLayout))

	require.NoError(t, repo.DeleteAll(ctx))
	dates, err = repo.ListDates(ctx)
	require.NoError(t, err)
	assert.Empty(t, dates)

	loaded, err := repo.Load(ctx, day("2024-01-01"))
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
