package attendance

import (
	"context"
)

// AttendanceService defines the upload, reconciliation and reporting operations
type AttendanceService interface {
	// Preview extracts, derives and merges an upload without saving it
	Preview(ctx context.Context, req UploadRequest) (ProcessedUploadResponse, error)

	// SaveSnapshot replaces the stored table (and overrides) for the upload date
	SaveSnapshot(ctx context.Context, req UploadRequest) (SnapshotResponse, error)

	// ListSnapshotDates returns every date with stored data, ascending, as YYYY-MM-DD
	ListSnapshotDates(ctx context.Context) ([]string, error)

	// GetDailyReport loads, merges and summarizes one stored date
	GetDailyReport(ctx context.Context, date string, filter RecordFilter) (DailyReportResponse, error)

	// GetRangeSummary summarizes every stored date within the range; missing dates are skipped
	GetRangeSummary(ctx context.Context, req RangeRequest) (Summary, error)

	// ExportRecords renders one date's merged records as CSV
	ExportRecords(ctx context.Context, date string) (ExportFile, error)

	// ExportDailySummary renders one date's per-person summary as CSV
	ExportDailySummary(ctx context.Context, date string) (ExportFile, error)

	// ExportRangeSummary renders a range summary as CSV
	ExportRangeSummary(ctx context.Context, req RangeRequest) (ExportFile, error)
}

// SubmissionService defines the attendance-marking form operations
type SubmissionService interface {
	// Submit records a marking-form entry for the authenticated person
	Submit(ctx context.Context, req SubmissionRequest) (SubmissionResponse, error)

	// GetDashboard computes rate and streaks over a person's submissions
	GetDashboard(ctx context.Context, personID string) (DashboardResponse, error)

	// ListUserSummaries returns every known user's attendance totals, most attended first
	ListUserSummaries(ctx context.Context) ([]UserAttendanceSummary, error)

	// ExportByDate renders one date's submissions as CSV
	ExportByDate(ctx context.Context, date string) (ExportFile, error)
}

// ResetService discards every snapshot, submission and user
type ResetService interface {
	Reset(ctx context.Context) error
}
