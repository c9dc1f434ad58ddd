package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// UnitOfWork runs fn so that its repository calls commit or fail together.
type UnitOfWork func(ctx context.Context, fn func(ctx context.Context) error) error

// Sequential runs fn directly, for stores without transactions.
func Sequential(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type ResetServiceImpl struct {
	snapshots   attendance.SnapshotRepository
	submissions attendance.SubmissionRepository
	users       user.UserRepository
	unitOfWork  UnitOfWork
}

func NewResetService(
	snapshotRepo attendance.SnapshotRepository,
	submissionRepo attendance.SubmissionRepository,
	userRepo user.UserRepository,
	unitOfWork UnitOfWork,
) attendance.ResetService {
	if unitOfWork == nil {
		unitOfWork = Sequential
	}
	return &ResetServiceImpl{
		snapshots:   snapshotRepo,
		submissions: submissionRepo,
		users:       userRepo,
		unitOfWork:  unitOfWork,
	}
}

// Reset implements attendance.ResetService.
func (s *ResetServiceImpl) Reset(ctx context.Context) error {
	err := s.unitOfWork(ctx, func(ctx context.Context) error {
		if err := s.snapshots.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete snapshots: %w", err)
		}
		if err := s.submissions.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if err := s.users.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete users: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	requestedBy := ""
	if _, claims, err := jwtauth.FromContext(ctx); err == nil {
		requestedBy, _ = claims["user_id"].(string)
	}
	slog.Warn("All attendance data reset", "requested_by", requestedBy)
	return nil
}
