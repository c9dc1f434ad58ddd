package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// ParseOverrides reads an override table whose header is the first non-blank
// row. It needs an identifier and a status column; the date comes from a Date
// column, else the date part of a Timestamp column, else defaultDate.
func ParseOverrides(grid [][]string, defaultDate *time.Time) ([]attendance.Override, error) {
	headerIdx := -1
	for i, row := range grid {
		if strings.TrimSpace(strings.Join(row, "")) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, attendance.ErrOverrideSchema
	}

	cols := attendance.MapColumns(grid[headerIdx])
	if !cols.Has(attendance.FieldPersonID) || !cols.Has(attendance.FieldStatus) {
		return nil, attendance.ErrOverrideSchema
	}

	var overrides []attendance.Override
	for _, row := range grid[headerIdx+1:] {
		date := normalize.Date(cols.Value(row, attendance.FieldDate))
		if date == nil {
			date = normalize.Date(cols.Value(row, attendance.FieldTimestamp))
		}
		if date == nil && defaultDate != nil {
			d := *defaultDate
			date = &d
		}

		o := canonicalOverride(attendance.Override{
			PersonID: cols.Value(row, attendance.FieldPersonID),
			Name:     cols.Value(row, attendance.FieldName),
			Date:     date,
			Status:   cols.Value(row, attendance.FieldStatus),
		})
		if !usableOverride(o) {
			continue
		}
		overrides = append(overrides, o)
	}

	return overrides, nil
}

func canonicalOverride(o attendance.Override) attendance.Override {
	o.PersonID = normalize.Identifier(o.PersonID)
	o.Name = normalize.Name(o.Name)
	o.Status = normalize.Status(o.Status)
	return o
}

func usableOverride(o attendance.Override) bool {
	return !normalize.IsPlaceholderID(o.PersonID) && o.Date != nil && o.Status != ""
}

// Merge applies overrides to base keyed by (person, date). A matching
// override always replaces the status; when two overrides share a key the
// later one wins. The row count of base is preserved and base is not modified.
func Merge(base []attendance.Record, overrides []attendance.Override) []attendance.Record {
	lookup := make(map[string]attendance.Override, len(overrides))
	for _, o := range overrides {
		o = canonicalOverride(o)
		if !usableOverride(o) {
			continue
		}
		lookup[o.Key()] = o
	}

	out := make([]attendance.Record, len(base))
	for i, r := range base {
		o, ok := lookup[r.Key()]
		if ok && r.Date != nil {
			if !r.Overridden {
				r.OriginalStatus = r.Status
			}
			r.Status = o.Status
			r.Overridden = true
			applyStatusFlags(&r)
		}
		out[i] = r
	}
	return out
}

// CountApplied returns how many records in merged carry an override.
func CountApplied(merged []attendance.Record) int {
	n := 0
	for _, r := range merged {
		if r.Overridden {
			n++
		}
	}
	return n
}
