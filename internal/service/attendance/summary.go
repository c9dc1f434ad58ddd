package attendance

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// canonicalStatuses always lead the summary columns.
var canonicalStatuses = []string{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusOD}

// StatusColumns lists the canonical statuses followed by every other
// non-empty status in first-seen order.
func StatusColumns(records []attendance.Record) []string {
	columns := append([]string(nil), canonicalStatuses...)
	seen := make(map[string]struct{}, len(columns))
	for _, s := range columns {
		seen[s] = struct{}{}
	}
	for _, r := range records {
		if r.Status == "" {
			continue
		}
		if _, ok := seen[r.Status]; ok {
			continue
		}
		seen[r.Status] = struct{}{}
		columns = append(columns, r.Status)
	}
	return columns
}

type personAccumulator struct {
	summary  attendance.PersonSummary
	attended map[string]time.Time
	dated    map[string]struct{}
}

// Summarize rolls records up per person and per department. The attendance
// rate divides a person's distinct attended days by the distinct days in the
// whole table.
func Summarize(records []attendance.Record, today time.Time) attendance.Summary {
	statuses := StatusColumns(records)

	tableDays := make(map[string]struct{})
	var from, to *time.Time
	for _, r := range records {
		tableDays[normalize.FormatDate(r.Date)] = struct{}{}
		if r.Date == nil {
			continue
		}
		if from == nil || r.Date.Before(*from) {
			from = r.Date
		}
		if to == nil || r.Date.After(*to) {
			to = r.Date
		}
	}

	people := make(map[string]*personAccumulator)
	var order []string
	for _, r := range records {
		acc, ok := people[r.PersonID]
		if !ok {
			counts := make(map[string]int, len(statuses))
			for _, s := range statuses {
				counts[s] = 0
			}
			acc = &personAccumulator{
				summary:  attendance.PersonSummary{PersonID: r.PersonID, Counts: counts},
				attended: make(map[string]time.Time),
				dated:    make(map[string]struct{}),
			}
			people[r.PersonID] = acc
			order = append(order, r.PersonID)
		}
		if r.Name != "" {
			acc.summary.Name = r.Name
		}
		if r.Department != "" {
			acc.summary.Department = r.Department
		}
		if r.Status != "" {
			acc.summary.Counts[r.Status]++
		}
		if r.Attended() {
			day := normalize.FormatDate(r.Date)
			if r.Date != nil {
				acc.attended[day] = *r.Date
			} else {
				acc.attended[day] = time.Time{}
			}
		}
	}

	sort.Strings(order)
	summaries := make([]attendance.PersonSummary, 0, len(order))
	for _, id := range order {
		acc := people[id]
		var dates []time.Time
		for day, d := range acc.attended {
			if day != "" {
				dates = append(dates, d)
			}
		}
		acc.summary.AttendedDays = len(acc.attended)
		acc.summary.AttendanceRate = Rate(len(acc.attended), len(tableDays))
		acc.summary.CurrentStreak, acc.summary.LongestStreak = Streaks(dates, today)
		summaries = append(summaries, acc.summary)
	}

	summary := attendance.Summary{
		TotalDays:   len(tableDays),
		Statuses:    statuses,
		People:      summaries,
		Departments: SummarizeDepartments(records),
	}
	if from != nil {
		summary.From = normalize.FormatDate(from)
		summary.To = normalize.FormatDate(to)
	}
	return summary
}

// Rate is a percentage rounded to two decimals; 0 when there are no days.
func Rate(attended, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(total)*10000) / 100
}

// SummarizeDepartments counts flags per department, sorted by department.
func SummarizeDepartments(records []attendance.Record) []attendance.DepartmentSummary {
	byDept := make(map[string]*attendance.DepartmentSummary)
	members := make(map[string]map[string]struct{})
	for _, r := range records {
		d, ok := byDept[r.Department]
		if !ok {
			d = &attendance.DepartmentSummary{Department: r.Department}
			byDept[r.Department] = d
			members[r.Department] = make(map[string]struct{})
		}
		members[r.Department][r.PersonID] = struct{}{}
		if r.IsPresent {
			d.Present++
		}
		if r.IsAbsent {
			d.Absent++
		}
		if r.IsOD {
			d.OD++
		}
		if r.DelayFlag {
			d.Late++
		}
		if r.HasPermission {
			d.WithPermission++
		}
	}

	out := make([]attendance.DepartmentSummary, 0, len(byDept))
	for name, d := range byDept {
		d.Headcount = len(members[name])
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// ComputeMetrics returns the dashboard totals for records.
func ComputeMetrics(records []attendance.Record) attendance.Metrics {
	m := attendance.Metrics{StaffShown: len(records)}
	for _, r := range records {
		if r.IsPresent {
			m.Present++
		}
		if r.IsAbsent {
			m.Absent++
		}
		if r.IsOD {
			m.OD++
		}
		if r.DelayFlag {
			m.Late++
		}
		if r.HasPermission {
			m.WithPermission++
		}
	}
	return m
}

// FilterRecords applies the dashboard filters. Status filters are OR'ed.
func FilterRecords(records []attendance.Record, filter attendance.RecordFilter) []attendance.Record {
	dept := strings.TrimSpace(filter.Department)
	if strings.EqualFold(dept, "all") {
		dept = ""
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if dept != "" && !strings.EqualFold(r.Department, dept) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.PersonID), search) &&
			!strings.Contains(strings.ToLower(r.Name), search) {
			continue
		}
		if len(filter.Statuses) > 0 && !matchesAnyStatus(r, filter.Statuses) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesAnyStatus(r attendance.Record, statuses []string) bool {
	for _, s := range statuses {
		switch strings.ToLower(s) {
		case attendance.FilterPresent:
			if r.IsPresent {
				return true
			}
		case attendance.FilterAbsent:
			if r.IsAbsent {
				return true
			}
		case attendance.FilterDelayed:
			if r.DelayFlag {
				return true
			}
		}
	}
	return false
}

// LateRecords returns the delayed records, longest delay first.
func LateRecords(records []attendance.Record) []attendance.Record {
	var late []attendance.Record
	for _, r := range records {
		if r.DelayFlag && r.DelayMinutes != nil {
			late = append(late, r)
		}
	}
	sort.SliceStable(late, func(i, j int) bool { return *late[i].DelayMinutes > *late[j].DelayMinutes })
	return late
}

// Departments returns the distinct non-empty departments, sorted.
func Departments(records []attendance.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if r.Department == "" {
			continue
		}
		if _, ok := seen[r.Department]; ok {
			continue
		}
		seen[r.Department] = struct{}{}
		out = append(out, r.Department)
	}
	sort.Strings(out)
	return out
}
