package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/staff-attendance/internal/service/attendance"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// recentLimit is the number of submissions shown on a dashboard.
const recentLimit = 7

type SubmissionServiceImpl struct {
	attendance.SubmissionRepository
	user.UserRepository
	now func() time.Time
}

func NewSubmissionService(submissionRepo attendance.SubmissionRepository, userRepo user.UserRepository) attendance.SubmissionService {
	return &SubmissionServiceImpl{
		SubmissionRepository: submissionRepo,
		UserRepository:       userRepo,
		now:                  time.Now,
	}
}

func currentUserID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", auth.ErrInvalidToken
	}
	return normalize.Identifier(userID), nil
}

// Submit implements attendance.SubmissionService.
func (s *SubmissionServiceImpl) Submit(ctx context.Context, req attendance.SubmissionRequest) (attendance.SubmissionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SubmissionResponse{}, err
	}

	userID, err := currentUserID(ctx)
	if err != nil {
		return attendance.SubmissionResponse{}, err
	}

	name := normalize.Name(req.Name)
	u, err := s.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return attendance.SubmissionResponse{}, auth.ErrUserNotFound
		}
		return attendance.SubmissionResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if u.FullName != name {
		if err := s.UserRepository.UpdateFullName(ctx, userID, name); err != nil {
			return attendance.SubmissionResponse{}, fmt.Errorf("failed to update full name: %w", err)
		}
	}

	submission := attendance.Submission{
		ID:        uuid.NewString(),
		Timestamp: s.now().Truncate(time.Second),
		PersonID:  userID,
		Name:      name,
		Type:      req.Type,
		Reason:    strings.TrimSpace(req.Reason),
	}
	if err := s.SubmissionRepository.Append(ctx, submission); err != nil {
		return attendance.SubmissionResponse{}, fmt.Errorf("failed to record submission: %w", err)
	}

	slog.Info("Attendance submitted", "user_id", userID, "type", submission.Type, "submission_id", submission.ID)
	return attendance.NewSubmissionResponse(submission), nil
}

// GetDashboard implements attendance.SubmissionService. Total days counts every
// distinct date present in the log, across all people.
func (s *SubmissionServiceImpl) GetDashboard(ctx context.Context, personID string) (attendance.DashboardResponse, error) {
	personID = normalize.Identifier(personID)

	u, err := s.UserRepository.GetByID(ctx, personID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return attendance.DashboardResponse{}, auth.ErrUserNotFound
		}
		return attendance.DashboardResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	all, err := s.SubmissionRepository.List(ctx)
	if err != nil {
		return attendance.DashboardResponse{}, fmt.Errorf("failed to list submissions: %w", err)
	}

	allDays := make(map[time.Time]struct{})
	var mine []attendance.Submission
	for _, sub := range all {
		allDays[sub.Date()] = struct{}{}
		if sub.PersonID == personID {
			mine = append(mine, sub)
		}
	}

	dates := make([]time.Time, 0, len(mine))
	attended := make(map[time.Time]struct{})
	for _, sub := range mine {
		dates = append(dates, sub.Date())
		attended[sub.Date()] = struct{}{}
	}
	current, longest := attendanceService.Streaks(dates, s.now())

	sort.SliceStable(mine, func(i, j int) bool { return mine[i].Timestamp.After(mine[j].Timestamp) })
	if len(mine) > recentLimit {
		mine = mine[:recentLimit]
	}
	recent := make([]attendance.SubmissionResponse, 0, len(mine))
	for _, sub := range mine {
		recent = append(recent, attendance.NewSubmissionResponse(sub))
	}

	return attendance.DashboardResponse{
		PersonID:       personID,
		FullName:       u.FullName,
		AttendanceRate: attendanceService.Rate(len(attended), len(allDays)),
		DaysAttended:   len(attended),
		TotalDays:      len(allDays),
		CurrentStreak:  current,
		LongestStreak:  longest,
		Recent:         recent,
	}, nil
}

// ListUserSummaries implements attendance.SubmissionService.
func (s *SubmissionServiceImpl) ListUserSummaries(ctx context.Context) ([]attendance.UserAttendanceSummary, error) {
	users, err := s.UserRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	all, err := s.SubmissionRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	datesByPerson := make(map[string][]time.Time)
	for _, sub := range all {
		datesByPerson[sub.PersonID] = append(datesByPerson[sub.PersonID], sub.Date())
	}

	today := s.now()
	summaries := make([]attendance.UserAttendanceSummary, 0, len(users))
	for _, u := range users {
		dates := datesByPerson[u.ID]
		days := make(map[time.Time]struct{}, len(dates))
		for _, d := range dates {
			days[d] = struct{}{}
		}
		current, longest := attendanceService.Streaks(dates, today)
		summaries = append(summaries, attendance.UserAttendanceSummary{
			PersonID:      u.ID,
			Name:          u.FullName,
			TotalAttended: len(days),
			CurrentStreak: current,
			MaxStreak:     longest,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].TotalAttended != summaries[j].TotalAttended {
			return summaries[i].TotalAttended > summaries[j].TotalAttended
		}
		return summaries[i].PersonID < summaries[j].PersonID
	})
	return summaries, nil
}

// ExportByDate implements attendance.SubmissionService.
func (s *SubmissionServiceImpl) ExportByDate(ctx context.Context, date string) (attendance.ExportFile, error) {
	day, ok := validator.IsValidDate(date)
	if !ok {
		return attendance.ExportFile{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}

	submissions, err := s.SubmissionRepository.ListByDate(ctx, day)
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to list submissions: %w", err)
	}
	content, err := attendanceService.SubmissionsCSV(submissions)
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render submissions: %w", err)
	}
	return attendance.ExportFile{Filename: attendanceService.SubmissionsFilename(date), Content: content}, nil
}
