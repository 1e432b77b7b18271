// Package grid produces the dates a month view needs, padded to whole weeks.
package grid

import (
	"time"

	"recurcal/internal/caldate"
)

// CalendarGrid returns every date from the Sunday on or before the 1st of
// the month through the Saturday on or after its last day.
func CalendarGrid(year int, month time.Month) []caldate.Date {
	return Month(year, month, time.Sunday)
}

// Month is CalendarGrid with a configurable first day of the week. The
// result always has a multiple of 7 dates and starts on weekStart.
func Month(year int, month time.Month, weekStart time.Weekday) []caldate.Date {
	first := caldate.New(year, month, 1)
	last := first.LastOfMonth()

	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	weekEnd := (weekStart + 6) % 7
	trail := (int(weekEnd) - int(last.Weekday()) + 7) % 7

	from := first.AddDays(-lead)
	n := lead + last.Day + trail

	dates := make([]caldate.Date, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, from.AddDays(i))
	}
	return dates
}

// Weeks splits a grid into rows of seven. A trailing partial row is kept.
func Weeks(dates []caldate.Date) [][]caldate.Date {
	rows := make([][]caldate.Date, 0, (len(dates)+6)/7)
	for len(dates) > 0 {
		n := min(7, len(dates))
		rows = append(rows, dates[:n:n])
		dates = dates[n:]
	}
	return rows
}

// ParseWeekStart maps a config value ("sunday"/"monday") to a weekday.
// Anything else is Sunday.
func ParseWeekStart(s string) time.Weekday {
	if s == "monday" {
		return time.Monday
	}
	return time.Sunday
}
