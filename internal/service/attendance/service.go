package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/sheet"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	attendance.SnapshotRepository
	schedule Schedule
	now      func() time.Time
}

func NewAttendanceService(snapshotRepo attendance.SnapshotRepository, schedule Schedule) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		SnapshotRepository: snapshotRepo,
		schedule:           schedule,
		now:                time.Now,
	}
}

func parseDate(field, value string) (time.Time, error) {
	date, ok := validator.IsValidDate(value)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{
			Field:   field,
			Message: field + " must be in YYYY-MM-DD format",
		}}
	}
	return date, nil
}

// readGrid maps spreadsheet errors onto domain errors.
func readGrid(r io.Reader, filename string) (sheet.Grid, error) {
	grid, err := sheet.Read(r, filename)
	switch {
	case err == nil:
		return grid, nil
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return nil, attendance.ErrUnsupportedFile
	case errors.Is(err, sheet.ErrEmptyWorksheet):
		return nil, attendance.ErrEmptyWorksheet
	case errors.Is(err, sheet.ErrNoWorksheet):
		return nil, attendance.ErrNoWorksheet
	default:
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
}

// parseUpload returns the source records and overrides of an upload.
func (s *AttendanceServiceImpl) parseUpload(req attendance.UploadRequest) (time.Time, []attendance.Record, []attendance.Override, error) {
	if err := req.Validate(); err != nil {
		return time.Time{}, nil, nil, err
	}
	date, _ := validator.IsValidDate(req.Date)

	grid, err := readGrid(req.File, req.Filename)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	records, err := ParseGrid(grid, &date)
	if err != nil {
		return time.Time{}, nil, nil, err
	}

	var overrides []attendance.Override
	if req.ODFile != nil {
		odGrid, err := readGrid(req.ODFile, req.ODFilename)
		if err != nil {
			return time.Time{}, nil, nil, err
		}
		overrides, err = ParseOverrides(odGrid, &date)
		if err != nil {
			return time.Time{}, nil, nil, err
		}
	}

	return date, records, overrides, nil
}

// Preview implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Preview(ctx context.Context, req attendance.UploadRequest) (attendance.ProcessedUploadResponse, error) {
	date, records, overrides, err := s.parseUpload(req)
	if err != nil {
		return attendance.ProcessedUploadResponse{}, err
	}

	merged := Merge(Derive(records, s.schedule), overrides)

	return attendance.ProcessedUploadResponse{
		Date:             date.Format("2006-01-02"),
		Metrics:          ComputeMetrics(merged),
		Departments:      Departments(merged),
		OverridesApplied: CountApplied(merged),
		Records:          attendance.NewRecordResponses(merged),
		LateRecords:      attendance.NewRecordResponses(LateRecords(merged)),
	}, nil
}

// SaveSnapshot implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SaveSnapshot(ctx context.Context, req attendance.UploadRequest) (attendance.SnapshotResponse, error) {
	date, records, overrides, err := s.parseUpload(req)
	if err != nil {
		return attendance.SnapshotResponse{}, err
	}

	snapshot := attendance.Snapshot{Date: date, Records: records, Overrides: overrides}
	if err := s.SnapshotRepository.Save(ctx, date, snapshot); err != nil {
		return attendance.SnapshotResponse{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	slog.Info("Saved attendance snapshot", "date", req.Date, "records", len(records), "overrides", len(overrides))

	return attendance.SnapshotResponse{
		Date:      req.Date,
		Records:   len(records),
		Overrides: len(overrides),
	}, nil
}

// ListSnapshotDates implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListSnapshotDates(ctx context.Context) ([]string, error) {
	dates, err := s.SnapshotRepository.ListDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}
	return out, nil
}

// loadDay rebuilds the merged table for date. ok is false when nothing is stored.
func (s *AttendanceServiceImpl) loadDay(ctx context.Context, date time.Time) (records []attendance.Record, ok bool, err error) {
	snapshot, err := s.SnapshotRepository.Load(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if snapshot == nil {
		return nil, false, nil
	}
	return Merge(Derive(snapshot.Records, s.schedule), snapshot.Overrides), true, nil
}

func (s *AttendanceServiceImpl) mustLoadDay(ctx context.Context, value string) (time.Time, []attendance.Record, error) {
	date, err := parseDate("date", value)
	if err != nil {
		return time.Time{}, nil, err
	}
	records, ok, err := s.loadDay(ctx, date)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to load snapshot for %s: %w", value, err)
	}
	if !ok {
		return time.Time{}, nil, attendance.ErrSnapshotNotFound
	}
	return date, records, nil
}

// GetDailyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyReport(ctx context.Context, date string, filter attendance.RecordFilter) (attendance.DailyReportResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.DailyReportResponse{}, err
	}
	_, records, err := s.mustLoadDay(ctx, date)
	if err != nil {
		return attendance.DailyReportResponse{}, err
	}

	filtered := FilterRecords(records, filter)

	return attendance.DailyReportResponse{
		Date:    date,
		Metrics: ComputeMetrics(filtered),
		Summary: Summarize(records, s.now()),
		Records: attendance.NewRecordResponses(filtered),
	}, nil
}

// rangeRecords concatenates every stored day in [from, to]. A day that fails
// to load is logged and skipped.
func (s *AttendanceServiceImpl) rangeRecords(ctx context.Context, req attendance.RangeRequest) ([]attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, _ := validator.IsValidDate(req.From)
	to, _ := validator.IsValidDate(req.To)

	dates, err := s.SnapshotRepository.ListDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}

	var all []attendance.Record
	for _, d := range dates {
		d = normalize.DateOf(d)
		if d.Before(from) || d.After(to) {
			continue
		}
		records, ok, err := s.loadDay(ctx, d)
		if err != nil {
			slog.Warn("Skipping unreadable snapshot", "date", d.Format("2006-01-02"), "error", err)
			continue
		}
		if !ok {
			continue
		}
		all = append(all, records...)
	}
	return all, nil
}

// GetRangeSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRangeSummary(ctx context.Context, req attendance.RangeRequest) (attendance.Summary, error) {
	records, err := s.rangeRecords(ctx, req)
	if err != nil {
		return attendance.Summary{}, err
	}
	summary := Summarize(records, s.now())
	summary.From = req.From
	summary.To = req.To
	return summary, nil
}

// ExportRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportRecords(ctx context.Context, date string) (attendance.ExportFile, error) {
	_, records, err := s.mustLoadDay(ctx, date)
	if err != nil {
		return attendance.ExportFile{}, err
	}
	content, err := RecordsCSV(records)
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render records: %w", err)
	}
	return attendance.ExportFile{Filename: RecordsFilename(date), Content: content}, nil
}

// ExportDailySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportDailySummary(ctx context.Context, date string) (attendance.ExportFile, error) {
	_, records, err := s.mustLoadDay(ctx, date)
	if err != nil {
		return attendance.ExportFile{}, err
	}
	content, err := SummaryCSV(Summarize(records, s.now()))
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render summary: %w", err)
	}
	return attendance.ExportFile{Filename: SummaryFilename(date), Content: content}, nil
}

// ExportRangeSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportRangeSummary(ctx context.Context, req attendance.RangeRequest) (attendance.ExportFile, error) {
	summary, err := s.GetRangeSummary(ctx, req)
	if err != nil {
		return attendance.ExportFile{}, err
	}
	content, err := SummaryCSV(summary)
	if err != nil {
		return attendance.ExportFile{}, fmt.Errorf("failed to render summary: %w", err)
	}
	return attendance.ExportFile{Filename: RangeSummaryFilename(req.From, req.To), Content: content}, nil
}
