// Package normalize maps raw spreadsheet cell text to canonical values.
// Every function here is total: malformed input yields an empty string or nil,
// never an error or a panic.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Placeholder identifiers produced by header echoes and sentinel rows.
var placeholderIDs = map[string]struct{}{
	"":        {},
	"E. CODE": {},
	"NAME":    {},
	"0":       {},
	"1":       {},
}

// Identifier trims and uppercases a person identifier.
func Identifier(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Status trims and uppercases a status code.
func Status(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Name trims a display name.
func Name(raw string) string {
	return strings.TrimSpace(raw)
}

// IsPlaceholderID reports whether id is empty or a known header/sentinel value.
func IsPlaceholderID(id string) bool {
	_, ok := placeholderIDs[Identifier(id)]
	return ok
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-2006",
	"01-02-06",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

// Date parses common date text and Excel serial numbers into a calendar date
// at UTC midnight. It returns nil for anything it does not recognise.
func Date(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	// Excel stores dates as day serials; only accept a plausible window.
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if !(serial >= 20000 && serial <= 80000) {
			return nil
		}
		parsed, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		d := DateOf(parsed)
		return &d
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			d := DateOf(parsed)
			return &d
		}
	}
	return nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD, or "" for nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// Minutes returns the minutes since midnight, ignoring seconds.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// TimeOfDay parses HH:MM:SS. Empty or malformed text yields nil.
func TimeOfDay(raw string) *Clock {
	s := strings.TrimSpace(raw)
	if s == "" || !strings.Contains(s, ":") {
		return nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return nil
	}
	return &Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// DurationMinutes parses HH:MM:SS, then HH:MM, into whole minutes.
func DurationMinutes(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" || !strings.Contains(s, ":") {
		return nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		minutes := t.Hour()*60 + t.Minute()
		return &minutes
	}
	return nil
}
