package attendance

import (
	"io"
	"strings"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
)

// ========================================
// UPLOAD DTOs
// ========================================

var UploadExtensions = []string{".xlsx", ".xls", ".csv"}

type UploadRequest struct {
	Date       string    `json:"date"` // YYYY-MM-DD
	File       io.Reader `json:"-"`
	Filename   string    `json:"-"`
	ODFile     io.Reader `json:"-"`
	ODFilename string    `json:"-"`
}

func (r *UploadRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.File == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "attendance file is required",
		})
	} else if !validator.IsValidFileExt(r.Filename, UploadExtensions) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "invalid file type: only xlsx, xls, csv allowed",
		})
	}

	if r.ODFile != nil && !validator.IsValidFileExt(r.ODFilename, UploadExtensions) {
		errs = append(errs, validator.ValidationError{
			Field:   "od_file",
			Message: "invalid file type: only xlsx, xls, csv allowed",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// QUERY DTOs
// ========================================

// Dashboard status filters
const (
	FilterPresent = "present"
	FilterAbsent  = "absent"
	FilterDelayed = "delayed"
)

type RecordFilter struct {
	Department string   `json:"department,omitempty"`
	Search     string   `json:"search,omitempty"` // matches identifier or name
	Statuses   []string `json:"statuses,omitempty"`
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	validStatuses := []string{FilterPresent, FilterAbsent, FilterDelayed}
	for i, s := range f.Statuses {
		s = strings.ToLower(strings.TrimSpace(s))
		if !validator.IsInSlice(s, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: present, absent, delayed",
			})
			break
		}
		f.Statuses[i] = s
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RangeRequest struct {
	From string `json:"from"` // YYYY-MM-DD
	To   string `json:"to"`   // YYYY-MM-DD
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	from, fromOK := validator.IsValidDate(r.From)
	if !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}
	to, toOK := validator.IsValidDate(r.To)
	if !toOK {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if from.After(to) {
		return ErrInvalidDateRange
	}

	return nil
}

// ========================================
// SUBMISSION DTOs
// ========================================

// Attendance types offered by the marking form.
var SubmissionTypes = []string{
	"OD",
	"Casual Leave (CL)",
	"SSL",
	"Special Permission",
	"Permission",
	"Common Leave",
	"Special Reason for OD",
}

var reasonRequiredTypes = []string{"OD", "Special Permission", "Special Reason for OD"}

// RequiresReason reports whether the attendance type needs a reason.
func RequiresReason(attendanceType string) bool {
	return validator.IsInSlice(attendanceType, reasonRequiredTypes)
}

type SubmissionRequest struct {
	PersonID string `json:"-"`
	Name     string `json:"name"`
	Type     string `json:"attendance_type"`
	Reason   string `json:"reason"`
}

func (r *SubmissionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "please enter your full name",
		})
	}

	if !validator.IsInSlice(r.Type, SubmissionTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_type",
			Message: "attendance_type must be one of: " + strings.Join(SubmissionTypes, ", "),
		})
	} else if RequiresReason(r.Type) && validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: ErrReasonRequired.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type RecordResponse struct {
	PersonID          string `json:"person_id"`
	Name              string `json:"name"`
	Department        string `json:"department"`
	Shift             string `json:"shift"`
	Date              string `json:"date"`
	Status            string `json:"status"`
	OriginalStatus    string `json:"original_status,omitempty"`
	InTime            string `json:"in_time"`
	DelayMinutes      *int   `json:"delay_minutes"`
	DelayFlag         bool   `json:"delay_flag"`
	TotalDurationMin  *int   `json:"total_duration_minutes"`
	EarlyLeaveMinutes int    `json:"early_leave_minutes"`
	OvertimeMinutes   int    `json:"overtime_minutes"`
	IsAbsent          bool   `json:"is_absent"`
	IsPresent         bool   `json:"is_present"`
	IsHalfDay         bool   `json:"is_half_day"`
	IsOD              bool   `json:"is_od"`
	HasPermission     bool   `json:"has_permission"`
	Remarks           string `json:"remarks"`
}

// NewRecordResponse converts a derived record for transport.
func NewRecordResponse(r Record) RecordResponse {
	return RecordResponse{
		PersonID:          r.PersonID,
		Name:              r.Name,
		Department:        r.Department,
		Shift:             r.Shift,
		Date:              normalize.FormatDate(r.Date),
		Status:            r.Status,
		OriginalStatus:    r.OriginalStatus,
		InTime:            r.InTime,
		DelayMinutes:      r.DelayMinutes,
		DelayFlag:         r.DelayFlag,
		TotalDurationMin:  r.TotalDurationMinutes,
		EarlyLeaveMinutes: r.EarlyLeaveMinutes,
		OvertimeMinutes:   r.OvertimeMinutes,
		IsAbsent:          r.IsAbsent,
		IsPresent:         r.IsPresent,
		IsHalfDay:         r.IsHalfDay,
		IsOD:              r.IsOD,
		HasPermission:     r.HasPermission,
		Remarks:           r.Remarks,
	}
}

func NewRecordResponses(records []Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewRecordResponse(r))
	}
	return out
}

type Metrics struct {
	StaffShown     int `json:"staff_shown"`
	Present        int `json:"present"`
	Absent         int `json:"absent"`
	OD             int `json:"od"`
	Late           int `json:"late"`
	WithPermission int `json:"with_permission"`
}

type ProcessedUploadResponse struct {
	Date             string           `json:"date"`
	Metrics          Metrics          `json:"metrics"`
	Departments      []string         `json:"departments"`
	OverridesApplied int              `json:"overrides_applied"`
	Records          []RecordResponse `json:"records"`
	LateRecords      []RecordResponse `json:"late_records"`
}

type SnapshotResponse struct {
	Date      string `json:"date"`
	Records   int    `json:"records"`
	Overrides int    `json:"overrides"`
}

type DailyReportResponse struct {
	Date    string           `json:"date"`
	Metrics Metrics          `json:"metrics"`
	Summary Summary          `json:"summary"`
	Records []RecordResponse `json:"records"`
}

type PersonSummary struct {
	PersonID       string         `json:"person_id"`
	Name           string         `json:"name"`
	Department     string         `json:"department"`
	Counts         map[string]int `json:"counts"`
	AttendedDays   int            `json:"attended_days"`
	AttendanceRate float64        `json:"attendance_rate"`
	CurrentStreak  int            `json:"current_streak"`
	LongestStreak  int            `json:"longest_streak"`
}

type DepartmentSummary struct {
	Department     string `json:"department"`
	Headcount      int    `json:"headcount"`
	Present        int    `json:"present"`
	Absent         int    `json:"absent"`
	OD             int    `json:"od"`
	Late           int    `json:"late"`
	WithPermission int    `json:"with_permission"`
}

type Summary struct {
	From        string              `json:"from,omitempty"`
	To          string              `json:"to,omitempty"`
	TotalDays   int                 `json:"total_days"`
	Statuses    []string            `json:"statuses"`
	People      []PersonSummary     `json:"people"`
	Departments []DepartmentSummary `json:"departments"`
}

type ExportFile struct {
	Filename string
	Content  []byte
}

type SubmissionResponse struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	PersonID  string `json:"person_id"`
	Name      string `json:"name"`
	Type      string `json:"attendance_type"`
	Reason    string `json:"reason,omitempty"`
}

func NewSubmissionResponse(s Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        s.ID,
		Timestamp: s.Timestamp.Format("2006-01-02 15:04:05"),
		PersonID:  s.PersonID,
		Name:      s.Name,
		Type:      s.Type,
		Reason:    s.Reason,
	}
}

type DashboardResponse struct {
	PersonID       string               `json:"person_id"`
	FullName       string               `json:"full_name"`
	AttendanceRate float64              `json:"attendance_rate"`
	DaysAttended   int                  `json:"days_attended"`
	TotalDays      int                  `json:"total_days"`
	CurrentStreak  int                  `json:"current_streak"`
	LongestStreak  int                  `json:"longest_streak"`
	Recent         []SubmissionResponse `json:"recent"`
}

type UserAttendanceSummary struct {
	PersonID      string `json:"person_id"`
	Name          string `json:"name"`
	TotalAttended int    `json:"total_attended"`
	CurrentStreak int    `json:"current_streak"`
	MaxStreak     int    `json:"max_streak"`
}

// ========================================
// ADMIN DTOs
// ========================================

// ResetConfirmation must be echoed back to wipe all data.
const ResetConfirmation = "RESET"

type ResetRequest struct {
	Confirm string `json:"confirm"`
}

func (r *ResetRequest) Validate() error {
	if strings.TrimSpace(r.Confirm) != ResetConfirmation {
		return validator.ValidationErrors{{
			Field:   "confirm",
			Message: "confirm must be " + ResetConfirmation,
		}}
	}
	return nil
}
