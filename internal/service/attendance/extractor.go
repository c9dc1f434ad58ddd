package attendance

import (
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// sectionMarker is the cell text that opens a department block in ERP exports.
const sectionMarker = "Department"

// Section is one labeled sub-table of a raw grid.
type Section struct {
	Label  string
	Header []string
	Rows   [][]string
}

type scanState int

const (
	seekingMarker scanState = iota
	readingHeader
	readingRows
)

// isMarkerRow reports whether row opens a section. A header row that happens
// to carry a Department column is not a marker.
func isMarkerRow(row []string) bool {
	found := false
	for _, cell := range row {
		if strings.TrimSpace(cell) == sectionMarker {
			found = true
		}
	}
	return found && !attendance.MapColumns(row).Has(attendance.FieldPersonID)
}

func markerLabel(row []string) string {
	for _, cell := range row {
		text := strings.TrimSpace(cell)
		if text != "" && text != sectionMarker {
			return text
		}
	}
	return ""
}

// sectionHeader keeps columns up to the last non-empty header cell and names
// blank cells inside that span unnamed_<index>.
func sectionHeader(row []string) []string {
	last := -1
	for i, cell := range row {
		if strings.TrimSpace(cell) != "" {
			last = i
		}
	}
	header := make([]string, last+1)
	for i := 0; i <= last; i++ {
		text := strings.TrimSpace(row[i])
		if text == "" {
			text = "unnamed_" + strconv.Itoa(i)
		}
		header[i] = text
	}
	return header
}

// fitRow trims or pads row to width.
func fitRow(row []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}

// ExtractSections scans grid top to bottom and returns every section that
// follows a marker row. A grid with no marker yields no sections.
func ExtractSections(grid [][]string) []Section {
	var (
		sections []Section
		current  *Section
		idCol    = -1
		state    = seekingMarker
	)

	flush := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for i := 0; i < len(grid); i++ {
		row := grid[i]

		switch state {
		case seekingMarker:
			if isMarkerRow(row) {
				current = &Section{Label: markerLabel(row)}
				state = readingHeader
			}

		case readingHeader:
			header := sectionHeader(row)
			if len(header) == 0 || isMarkerRow(row) {
				// Unusable section; resume looking for the next marker here.
				current = nil
				state = seekingMarker
				i--
				continue
			}
			current.Header = header
			idCol = -1
			if col, ok := attendance.MapColumns(header)[attendance.FieldPersonID]; ok {
				idCol = col
			}
			state = readingRows

		case readingRows:
			if isMarkerRow(row) {
				flush()
				state = seekingMarker
				i--
				continue
			}
			fitted := fitRow(row, len(current.Header))
			if idCol >= 0 && fitted[idCol] == "" {
				continue
			}
			current.Rows = append(current.Rows, fitted)
		}
	}
	if state == readingRows {
		flush()
	}

	return sections
}

// SectionsToRecords maps section columns onto records, attaching each
// section's label as the department. Placeholder identifiers are dropped.
func SectionsToRecords(sections []Section) []attendance.Record {
	var records []attendance.Record
	for _, s := range sections {
		cols := attendance.MapColumns(s.Header)
		if !cols.Has(attendance.FieldPersonID) {
			continue
		}
		for _, row := range s.Rows {
			r := attendance.RecordFromRow(cols, row)
			if normalize.IsPlaceholderID(r.PersonID) {
				continue
			}
			if s.Label != "" {
				r.Department = s.Label
			}
			records = append(records, r)
		}
	}
	return records
}

// FlatTableToRecords handles exports without department blocks: the first
// row holding an identifier header is the header row.
func FlatTableToRecords(grid [][]string) ([]attendance.Record, bool) {
	for i, row := range grid {
		cols := attendance.MapColumns(row)
		if !cols.Has(attendance.FieldPersonID) {
			continue
		}
		var records []attendance.Record
		for _, data := range grid[i+1:] {
			r := attendance.RecordFromRow(cols, data)
			if normalize.IsPlaceholderID(r.PersonID) {
				continue
			}
			records = append(records, r)
		}
		return records, true
	}
	return nil, false
}

// ParseGrid extracts source records from an uploaded grid, preferring the
// sectioned layout and falling back to a flat table. Records without a date
// cell take date when it is non-nil.
func ParseGrid(grid [][]string, date *time.Time) ([]attendance.Record, error) {
	var records []attendance.Record
	if sections := ExtractSections(grid); len(sections) > 0 {
		records = SectionsToRecords(sections)
	} else if flat, ok := FlatTableToRecords(grid); ok {
		records = flat
	} else {
		return nil, attendance.ErrNoRecognizableTable
	}

	if date != nil {
		for i := range records {
			if records[i].Date == nil {
				d := *date
				records[i].Date = &d
			}
		}
	}
	return dedupe(records), nil
}

// dedupe keeps the first record for each (person, date).
func dedupe(records []attendance.Record) []attendance.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
