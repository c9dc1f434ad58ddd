package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cmlabs-hris/staff-attendance/internal/cli"
	"github.com/cmlabs-hris/staff-attendance/internal/config"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/logger"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/file"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/staff-attendance/internal/service/attendance"
)

var version = "dev"

// openStore picks the SQLite repository for *.db paths and the flat-file
// store otherwise.
func openStore(ctx context.Context, path string) (attendance.SnapshotRepository, func(), error) {
	if strings.HasSuffix(strings.ToLower(path), ".db") {
		db, err := database.NewSQLiteDB(path)
		if err != nil {
			return nil, nil, err
		}
		repo, err := sqlite.NewSnapshotRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil
	}

	fs, err := storage.NewLocalStorage(path)
	if err != nil {
		return nil, nil, err
	}
	return file.NewSnapshotRepository(fs), func() {}, nil
}

func main() {
	var app cli.App
	kctx := kong.Parse(&app,
		kong.Name("attendancectl"),
		kong.Description("Reconcile staff attendance workbooks from the command line"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"version": version},
	)

	slog.SetDefault(logger.NewCLI(os.Stderr, app.Verbose))

	schedule := config.ScheduleConfig{Start: app.Start, DurationMinutes: app.Duration}
	start, ok := schedule.StartClock()
	if !ok || schedule.DurationMinutes <= 0 {
		kctx.Fatalf("invalid workday %q for %d minutes", app.Start, app.Duration)
	}

	ctx := context.Background()
	repo, closeStore, err := openStore(ctx, app.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := attendanceService.NewAttendanceService(repo, attendanceService.Schedule{
		Start:           start,
		DurationMinutes: schedule.DurationMinutes,
	})
	appCtx := &cli.Context{
		Ctx:        ctx,
		Attendance: svc,
		Out:        os.Stdout,
		Now:        time.Now,
	}

	if err := kctx.Run(appCtx); err != nil {
		slog.Debug("Command failed", "command", kctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeStore()
		os.Exit(1)
	}
}
