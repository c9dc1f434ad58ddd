package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
)

// Streaks returns the current and longest runs of consecutive calendar days.
// The current streak counts back from today and is 0 when today is absent.
func Streaks(dates []time.Time, today time.Time) (current, longest int) {
	days := uniqueDaysDesc(dates)
	if len(days) == 0 {
		return 0, 0
	}

	today = normalize.DateOf(today)
	if days[0].Equal(today) {
		current = 1
		for i := 1; i < len(days); i++ {
			if !isPreviousDay(days[i], days[i-1]) {
				break
			}
			current++
		}
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if isPreviousDay(days[i], days[i-1]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return current, longest
}

func uniqueDaysDesc(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := normalize.DateOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days
}

// isPreviousDay reports whether earlier is exactly one calendar day before later.
func isPreviousDay(earlier, later time.Time) bool {
	return earlier.AddDate(0, 0, 1).Equal(later)
}
