package attendance

import (
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// Canonical status codes. Any other code is kept verbatim.
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusHalfDay = "½PRESENT"
	StatusOD      = "OD"
)

// DefaultShift is assigned to records whose shift cell is blank.
const DefaultShift = "GS"

// Record is one row per (person, date).
type Record struct {
	PersonID   string
	Name       string
	Department string
	Shift      string
	Date       *time.Time
	Status     string
	InTime     string // raw cell text
	Duration   string // raw "Tot. Dur." cell text
	Remarks    string

	// Derived, see service/attendance.Derive
	InTimeClock          *normalize.Clock
	TotalDurationMinutes *int
	DelayMinutes         *int
	DelayFlag            bool
	EarlyLeaveMinutes    int
	OvertimeMinutes      int
	IsAbsent             bool
	IsPresent            bool
	IsHalfDay            bool
	HasPermission        bool

	// Set by the OD merge
	OriginalStatus string
	Overridden     bool
	IsOD           bool
}

// Key identifies a record within a day's table.
func (r Record) Key() string {
	return r.PersonID + "|" + normalize.FormatDate(r.Date)
}

// Attended reports whether the record counts as a day attended.
func (r Record) Attended() bool {
	return r.IsPresent || r.IsHalfDay || r.IsOD
}

// Override replaces the status of the base record with the same key.
type Override struct {
	PersonID string
	Name     string
	Date     *time.Time
	Status   string
}

// Key identifies the base record the override applies to.
func (o Override) Key() string {
	return o.PersonID + "|" + normalize.FormatDate(o.Date)
}

// Snapshot is the persisted table for one calendar date.
type Snapshot struct {
	Date      time.Time
	Records   []Record
	Overrides []Override
}

// Submission is one entry of the attendance-marking form.
type Submission struct {
	ID        string
	Timestamp time.Time
	PersonID  string
	Name      string
	Type      string
	Reason    string
}

// Date returns the calendar date of the submission.
func (s Submission) Date() time.Time {
	return normalize.DateOf(s.Timestamp)
}
