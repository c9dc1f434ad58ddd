package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/config"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/staff-attendance/internal/handler/http"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/logger"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/file"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/postgresql"
	adminService "github.com/cmlabs-hris/staff-attendance/internal/service/admin"
	attendanceService "github.com/cmlabs-hris/staff-attendance/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/staff-attendance/internal/service/auth"
	submissionService "github.com/cmlabs-hris/staff-attendance/internal/service/submission"
)

const revokedTokenPruneInterval = 15 * time.Minute

// repositories is the storage backend chosen by STORAGE_TYPE.
type repositories struct {
	users       user.UserRepository
	snapshots   attendance.SnapshotRepository
	submissions attendance.SubmissionRepository
	unitOfWork  adminService.UnitOfWork
	close       func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Type {
	case config.StorageFile:
		fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return &repositories{
			users:       file.NewUserRepository(fileStorage),
			snapshots:   file.NewSnapshotRepository(fileStorage),
			submissions: file.NewSubmissionRepository(fileStorage),
			unitOfWork:  adminService.Sequential,
			close:       func() {},
		}, nil

	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.RunInTx(ctx, db, fn)
		}
		return &repositories{
			users:       postgresql.NewUserRepository(db),
			snapshots:   postgresql.NewSnapshotRepository(db),
			submissions: postgresql.NewSubmissionRepository(db),
			unitOfWork:  inTx,
			close:       db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.Setup(logger.Options{
		App:     cfg.App.Name,
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		File:    cfg.App.LogFile,
	})
	if err != nil {
		fmt.Println("Error initializing logger:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Error("Failed to open storage", "storage", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	start, _ := cfg.Schedule.StartClock()
	schedule := attendanceService.Schedule{
		Start:           start,
		DurationMinutes: cfg.Schedule.DurationMinutes,
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authService := serviceAuth.NewAuthService(repos.users, JWTService, cfg.Auth.DefaultPassword, cfg.Auth.AdminIDs)
	attendanceSvc := attendanceService.NewAttendanceService(repos.snapshots, schedule)
	submissionSvc := submissionService.NewSubmissionService(repos.submissions, repos.users)
	resetSvc := adminService.NewResetService(repos.snapshots, repos.submissions, repos.users, repos.unitOfWork)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("prune-revoked-tokens", revokedTokenPruneInterval, cron.PruneRevokedTokens(JWTService))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         log,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewAuthHandler(JWTService, authService),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewSubmissionHandler(submissionSvc),
		appHTTP.NewAdminHandler(resetSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}
