package attendance

import (
	"strings"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// Schedule is the working day the derived columns are measured against.
type Schedule struct {
	Start           normalize.Clock
	DurationMinutes int
}

// DefaultSchedule is a 09:00 start with a six hour day.
var DefaultSchedule = Schedule{
	Start:           normalize.Clock{Hour: 9},
	DurationMinutes: 360,
}

// Derive computes lateness, duration and status flags for every record.
// The input slice is not modified.
func Derive(records []attendance.Record, sched Schedule) []attendance.Record {
	out := make([]attendance.Record, len(records))
	for i, r := range records {
		out[i] = deriveRecord(r, sched)
	}
	return out
}

func deriveRecord(r attendance.Record, sched Schedule) attendance.Record {
	if r.Shift == "" {
		r.Shift = attendance.DefaultShift
	}

	r.InTimeClock = normalize.TimeOfDay(r.InTime)
	r.DelayMinutes = nil
	r.DelayFlag = false
	if r.InTimeClock != nil {
		delay := r.InTimeClock.Minutes() - sched.Start.Minutes()
		r.DelayMinutes = &delay
		r.DelayFlag = delay > 0
	}

	if r.Duration != "" {
		r.TotalDurationMinutes = normalize.DurationMinutes(r.Duration)
	}
	r.EarlyLeaveMinutes = 0
	r.OvertimeMinutes = 0
	if r.TotalDurationMinutes != nil {
		diff := *r.TotalDurationMinutes - sched.DurationMinutes
		if diff < 0 {
			r.EarlyLeaveMinutes = -diff
		} else {
			r.OvertimeMinutes = diff
		}
	}

	applyStatusFlags(&r)
	r.HasPermission = strings.Contains(strings.ToLower(r.Remarks), "permission")

	return r
}

// applyStatusFlags sets the status booleans from r.Status by case-insensitive
// substring match. An OD record is neither absent nor present.
func applyStatusFlags(r *attendance.Record) {
	status := strings.ToLower(r.Status)
	r.IsHalfDay = strings.Contains(status, "½present") || strings.Contains(status, "half")
	r.IsAbsent = strings.Contains(status, "absent")
	r.IsPresent = strings.Contains(status, "present")
	r.IsOD = r.Status == attendance.StatusOD
}
