package attendance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/sheet"
)

// Trailing columns of the summary export, after the status counts.
const (
	colAttendedDays   = "Attended Days"
	colAttendanceRate = "Attendance Rate"
	colCurrentStreak  = "Current Streak"
	colLongestStreak  = "Longest Streak"
)

var derivedHeader = []string{
	"Original Status", "Delay_Minutes", "Delay_Flag", "TotDur_min",
	"Early_Leave_Min", "Overtime_Min", "Is_Absent", "Is_Present",
	"Is_Half_Day", "Has_Permission", "Is_OD",
}

func RecordsFilename(date string) string {
	return fmt.Sprintf("attendance_records_%s.csv", date)
}

func SummaryFilename(date string) string {
	return fmt.Sprintf("attendance_summary_%s.csv", date)
}

func RangeSummaryFilename(from, to string) string {
	return fmt.Sprintf("attendance_summary_%s_to_%s.csv", from, to)
}

func SubmissionsFilename(date string) string {
	return fmt.Sprintf("attendance_%s.csv", date)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// RecordsCSV renders source and derived columns. The header is accepted by
// ParseGrid, so an export can be uploaded again.
func RecordsCSV(records []attendance.Record) ([]byte, error) {
	header := append(append([]string(nil), attendance.SourceHeader...), derivedHeader...)
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := r.SourceValues()
		row = append(row,
			r.OriginalStatus,
			optionalInt(r.DelayMinutes),
			flag(r.DelayFlag),
			optionalInt(r.TotalDurationMinutes),
			strconv.Itoa(r.EarlyLeaveMinutes),
			strconv.Itoa(r.OvertimeMinutes),
			flag(r.IsAbsent),
			flag(r.IsPresent),
			flag(r.IsHalfDay),
			flag(r.HasPermission),
			flag(r.IsOD),
		)
		rows = append(rows, row)
	}
	return sheet.WriteCSV(header, rows)
}

// SummaryCSV renders one row per person with a column per status.
func SummaryCSV(summary attendance.Summary) ([]byte, error) {
	header := []string{attendance.HeaderPersonID, attendance.HeaderName, attendance.HeaderDept}
	header = append(header, summary.Statuses...)
	header = append(header, colAttendedDays, colAttendanceRate, colCurrentStreak, colLongestStreak)

	rows := make([][]string, 0, len(summary.People))
	for _, p := range summary.People {
		row := []string{p.PersonID, p.Name, p.Department}
		for _, s := range summary.Statuses {
			row = append(row, strconv.Itoa(p.Counts[s]))
		}
		row = append(row,
			strconv.Itoa(p.AttendedDays),
			strconv.FormatFloat(p.AttendanceRate, 'f', 2, 64),
			strconv.Itoa(p.CurrentStreak),
			strconv.Itoa(p.LongestStreak),
		)
		rows = append(rows, row)
	}
	return sheet.WriteCSV(header, rows)
}

// ParseSummary reads a grid written by SummaryCSV back into per-person
// summaries. Every column between Department and Attended Days is a status.
func ParseSummary(grid [][]string) ([]attendance.PersonSummary, error) {
	if len(grid) == 0 {
		return nil, attendance.ErrEmptyWorksheet
	}
	header := grid[0]
	if len(header) < 3 || !strings.EqualFold(strings.TrimSpace(header[0]), attendance.HeaderPersonID) {
		return nil, attendance.ErrNoRecognizableTable
	}

	end := len(header)
	for i, h := range header {
		if h == colAttendedDays {
			end = i
			break
		}
	}
	statuses := header[3:end]
	tail := header[end:]

	people := make([]attendance.PersonSummary, 0, len(grid)-1)
	for _, row := range grid[1:] {
		g := sheet.Grid{row}
		p := attendance.PersonSummary{
			PersonID:   normalize.Identifier(g.Cell(0, 0)),
			Name:       g.Cell(0, 1),
			Department: g.Cell(0, 2),
			Counts:     make(map[string]int, len(statuses)),
		}
		if normalize.IsPlaceholderID(p.PersonID) {
			continue
		}
		for i, s := range statuses {
			n, err := strconv.Atoi(strings.TrimSpace(g.Cell(0, 3+i)))
			if err != nil {
				return nil, fmt.Errorf("invalid %s count for %s: %w", s, p.PersonID, err)
			}
			p.Counts[s] = n
		}
		for i, col := range tail {
			cell := strings.TrimSpace(g.Cell(0, end+i))
			switch col {
			case colAttendedDays:
				p.AttendedDays, _ = strconv.Atoi(cell)
			case colAttendanceRate:
				p.AttendanceRate, _ = strconv.ParseFloat(cell, 64)
			case colCurrentStreak:
				p.CurrentStreak, _ = strconv.Atoi(cell)
			case colLongestStreak:
				p.LongestStreak, _ = strconv.Atoi(cell)
			}
		}
		people = append(people, p)
	}
	return people, nil
}

// SubmissionsCSV renders the marking-form log. ParseOverrides accepts the
// result, so the log can be merged as an override file.
func SubmissionsCSV(submissions []attendance.Submission) ([]byte, error) {
	rows := make([][]string, 0, len(submissions))
	for _, s := range submissions {
		rows = append(rows, s.Values())
	}
	return sheet.WriteCSV(attendance.SubmissionHeader, rows)
}
