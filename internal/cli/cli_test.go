package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/file"
	attendanceService "github.com/cmlabs-hris/staff-attendance/internal/service/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const erpSheet = `Department,Sales
E. Code,Name,Status,InTime,Tot. Dur.
x,Xavier,ABSENT,,
y,Yash,PRESENT,09:30:00,06:00
Department,Ops
E. Code,Name,Status,InTime,Tot. Dur.
z,Zoya,PRESENT,08:55:00,07:00
`

const odSheet = `ID Number,Name,Attendance Type
X,Xavier,OD
`

type harness struct {
	dir string
	ctx *Context
	out *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "erp.csv"), []byte(erpSheet), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "od.csv"), []byte(odSheet), 0644))

	fs, err := storage.NewLocalStorage(filepath.Join(dir, "store"))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &harness{
		dir: dir,
		out: out,
		ctx: &Context{
			Ctx:        context.Background(),
			Attendance: attendanceService.NewAttendanceService(file.NewSnapshotRepository(fs), attendanceService.DefaultSchedule),
			Out:        out,
			Now:        func() time.Time { return time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC) },
		},
	}
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()

	var app App
	parser, err := kong.New(&app, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	h.out.Reset()
	return kctx.Run(h.ctx)
}

func TestExtract(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "extract", h.path("erp.csv"), "--od", h.path("od.csv"), "--date", "2024-01-01"))
	assert.Contains(t, h.out.String(), "Zoya")
	assert.Contains(t, h.out.String(), "overrides applied 1")

	require.NoError(t, h.run(t, "dates"))
	assert.Contains(t, h.out.String(), "No snapshots stored.")
}

func TestExtract_JSON(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "extract", h.path("erp.csv"), "--date", "2024-01-01", "--format", "json"))

	var result attendance.ProcessedUploadResponse
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &result))
	assert.Equal(t, "2024-01-01", result.Date)
	assert.Len(t, result.Records, 3)
	assert.Equal(t, 0, result.OverridesApplied)
}

func TestSaveReportSummary(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "save", h.path("erp.csv"), "--od", h.path("od.csv"), "--date", "2024-01-01"))
	assert.Contains(t, h.out.String(), "Saved 2024-01-01: 3 records, 1 overrides")

	require.NoError(t, h.run(t, "dates"))
	assert.Equal(t, "2024-01-01\n", h.out.String())

	require.NoError(t, h.run(t, "report", "2024-01-01", "--department", "Ops", "--format", "json"))
	var report attendance.DailyReportResponse
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &report))
	require.Len(t, report.Records, 1)
	assert.Equal(t, "Zoya", report.Records[0].Name)

	export := h.path("records.csv")
	require.NoError(t, h.run(t, "report", "2024-01-01", "--export", export))
	content, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Xavier")

	require.NoError(t, h.run(t, "summary", "--from", "2024-01-01"))
	assert.Contains(t, h.out.String(), "1 days from 2024-01-01 to 2024-01-03")
	assert.Contains(t, h.out.String(), "Yash")
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)

	err := h.run(t, "report", "2024-02-01")
	assert.ErrorIs(t, err, attendance.ErrSnapshotNotFound)

	err = h.run(t, "save", h.path("erp.csv"), "--date", "01/02/2024")
	assert.ErrorContains(t, err, "invalid date format")

	err = h.run(t, "summary", "--from", "2024-01-05", "--to", "2024-01-01")
	assert.ErrorIs(t, err, attendance.ErrInvalidDateRange)
}
