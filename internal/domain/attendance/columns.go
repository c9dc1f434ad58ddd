package attendance

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// Logical columns recognised in uploaded tables.
const (
	FieldPersonID    = "person_id"
	FieldName        = "name"
	FieldDepartment  = "department"
	FieldShift       = "shift"
	FieldDate        = "date"
	FieldStatus      = "status"
	FieldInTime      = "in_time"
	FieldDuration    = "duration"
	FieldDurationMin = "duration_minutes"
	FieldRemarks     = "remarks"
	FieldTimestamp   = "timestamp"
)

// Header texts as exported by the ERP portal.
const (
	HeaderPersonID = "E. Code"
	HeaderName     = "Name"
	HeaderDept     = "Department"
	HeaderShift    = "Shift"
	HeaderDate     = "Date"
	HeaderStatus   = "Status"
	HeaderInTime   = "InTime"
	HeaderDuration = "Tot. Dur."
	HeaderRemarks  = "Remarks"
)

var headerAliases = map[string]string{
	"e. code":                FieldPersonID,
	"e.code":                 FieldPersonID,
	"ecode":                  FieldPersonID,
	"e code":                 FieldPersonID,
	"employee code":          FieldPersonID,
	"id number":              FieldPersonID,
	"person_id":              FieldPersonID,
	"name":                   FieldName,
	"employee name":          FieldName,
	"full name":              FieldName,
	"department":             FieldDepartment,
	"dept":                   FieldDepartment,
	"shift":                  FieldShift,
	"date":                   FieldDate,
	"status":                 FieldStatus,
	"attendance type":        FieldStatus,
	"intime":                 FieldInTime,
	"in time":                FieldInTime,
	"in_time":                FieldInTime,
	"tot. dur.":              FieldDuration,
	"tot. dur":               FieldDuration,
	"tot dur":                FieldDuration,
	"totdur":                 FieldDuration,
	"total duration":         FieldDuration,
	"totdur_min":             FieldDurationMin,
	"total_duration_minutes": FieldDurationMin,
	"remarks":                FieldRemarks,
	"timestamp":              FieldTimestamp,
}

// ColumnMap maps logical fields to column indexes of a header row.
type ColumnMap map[string]int

// MapColumns resolves header texts to logical fields. The first matching
// column wins; unknown headers are ignored.
func MapColumns(header []string) ColumnMap {
	m := make(ColumnMap)
	for i, h := range header {
		field, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := m[field]; !seen {
			m[field] = i
		}
	}
	return m
}

// Has reports whether the field is present.
func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Value returns the trimmed cell for field, or "" when absent.
func (m ColumnMap) Value(row []string, field string) string {
	i, ok := m[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// RecordFromRow builds a source record from a data row. Identifier, status,
// name, and date are canonicalised; other cells are kept as text.
func RecordFromRow(cols ColumnMap, row []string) Record {
	r := Record{
		PersonID:   normalize.Identifier(cols.Value(row, FieldPersonID)),
		Name:       normalize.Name(cols.Value(row, FieldName)),
		Department: cols.Value(row, FieldDepartment),
		Shift:      cols.Value(row, FieldShift),
		Date:       normalize.Date(cols.Value(row, FieldDate)),
		Status:     normalize.Status(cols.Value(row, FieldStatus)),
		InTime:     cols.Value(row, FieldInTime),
		Duration:   cols.Value(row, FieldDuration),
		Remarks:    cols.Value(row, FieldRemarks),
	}
	if r.Duration == "" {
		if n, err := strconv.Atoi(cols.Value(row, FieldDurationMin)); err == nil {
			r.TotalDurationMinutes = &n
		}
	}
	return r
}

// SourceHeader is the column layout used to persist source records.
var SourceHeader = []string{
	HeaderPersonID, HeaderName, HeaderDept, HeaderShift, HeaderDate,
	HeaderStatus, HeaderInTime, HeaderDuration, HeaderRemarks,
}

// SourceValues returns the record's source fields in SourceHeader order.
func (r Record) SourceValues() []string {
	return []string{
		r.PersonID, r.Name, r.Department, r.Shift, normalize.FormatDate(r.Date),
		r.Status, r.InTime, r.Duration, r.Remarks,
	}
}

// HeaderDurationMin carries a duration already expressed in minutes.
const HeaderDurationMin = "TotDur_min"

// PersistHeader is SourceHeader plus the minutes column, for stores that keep
// snapshots as flat tables.
var PersistHeader = append(append([]string(nil), SourceHeader...), HeaderDurationMin)

// PersistValues returns the record in PersistHeader order. The minutes cell is
// written only when there is no raw duration text to recompute it from.
func (r Record) PersistValues() []string {
	minutes := ""
	if r.Duration == "" && r.TotalDurationMinutes != nil {
		minutes = strconv.Itoa(*r.TotalDurationMinutes)
	}
	return append(r.SourceValues(), minutes)
}

// OverrideHeader is the column layout used to persist overrides.
var OverrideHeader = []string{HeaderPersonID, HeaderName, HeaderDate, HeaderStatus}

// Values returns the override in OverrideHeader order.
func (o Override) Values() []string {
	return []string{o.PersonID, o.Name, normalize.FormatDate(o.Date), o.Status}
}

// SubmissionHeader is the layout of the marking-form log.
var SubmissionHeader = []string{"Timestamp", "ID Number", "Name", "Attendance Type", "OD Reason"}

// Values returns the submission in SubmissionHeader order.
func (s Submission) Values() []string {
	return []string{s.Timestamp.Format("2006-01-02 15:04:05"), s.PersonID, s.Name, s.Type, s.Reason}
}
