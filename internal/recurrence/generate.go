// Package recurrence generates the dates a recurrence pattern denotes.
//
// Every function here is pure: patterns and dates are passed by value and
// nothing is retained between calls, so the package is safe for concurrent
// use without coordination.
package recurrence

import (
	"slices"
	"time"

	"recurcal/internal/caldate"
)

// Safety caps on the number of generated dates.
const (
	// DefaultMaxCount is used when the caller passes a non-positive cap.
	DefaultMaxCount = 50
	// PreviewCount is what the picker shows while a pattern is being edited.
	PreviewCount = 10
	// CommitCount is what the picker stores when a pattern is applied.
	CommitCount = 100
)

// Generate returns the dates denoted by p starting at start.
//
// The result always begins with start and holds at most maxCount dates
// (DefaultMaxCount if maxCount <= 0). Generation also stops at the first
// candidate after p.EndDate; that candidate is not included. A pattern of an
// unknown type yields only the dates accumulated so far, i.e. [start].
func Generate(start caldate.Date, p Pattern, maxCount int) []caldate.Date {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}

	dates := make([]caldate.Date, 0, min(maxCount, CommitCount))
	dates = append(dates, start)
	if p.Type == TypeNone {
		return dates
	}

	end, hasEnd := p.EndDate.Get()
	current := start
	for len(dates) < maxCount {
		next, ok := nextOccurrence(current, p)
		if !ok {
			return dates
		}
		if hasEnd && next.After(end) {
			break
		}
		dates = append(dates, next)
		current = next
	}

	return dates
}

// nextOccurrence applies the per-type stepping rule. ok is false for a type
// the generator does not know.
func nextOccurrence(current caldate.Date, p Pattern) (caldate.Date, bool) {
	switch p.Type {
	case TypeDaily:
		return current.AddDays(p.step()), true
	case TypeWeekly:
		if len(p.DaysOfWeek) > 0 {
			return NextWeekly(current, p.DaysOfWeek), true
		}
		return current.AddWeeks(p.step()), true
	case TypeMonthly:
		if p.ByWeekdayRule() {
			return NextMonthlyWeekday(current, p.WeekOfMonth, p.DayOfWeek.MustGet(), p.step()), true
		}
		return current.AddMonths(p.step()), true
	case TypeYearly:
		return current.AddYears(p.step()), true
	default:
		return caldate.Date{}, false
	}
}

// NextWeekly returns the earliest date strictly after current whose weekday
// is in days. With an empty set it falls back to current + 7 days.
func NextWeekly(current caldate.Date, days []time.Weekday) caldate.Date {
	for i := 1; i <= 7; i++ {
		candidate := current.AddDays(i)
		if slices.Contains(days, candidate.Weekday()) {
			return candidate
		}
	}
	return current.AddDays(7)
}

// NextMonthlyWeekday returns the weekOfMonth-th dayOfWeek of the month of
// current.AddMonths(monthInterval). When that month has no fifth such weekday
// the fourth is used instead.
//
// AddMonths rolls over, so a current date of the 29th-31st can land in the
// month after a short one: Jan 30 + 1 month searches March.
func NextMonthlyWeekday(current caldate.Date, weekOfMonth int, dayOfWeek time.Weekday, monthInterval int) caldate.Date {
	first := current.AddMonths(monthInterval).FirstOfMonth()
	firstWeekday := first.Weekday()

	offset := (weekOfMonth-1)*7 + (int(dayOfWeek)-int(firstWeekday)+7)%7
	target := first.AddDays(offset)
	if !target.SameMonth(first) {
		target = target.AddDays(-7)
	}
	return target
}

// OrdinalWeekOf returns the ordinal (1..5) of d's weekday within its month:
// ceil(day / 7). This is how the picker seeds a monthly weekday rule.
func OrdinalWeekOf(d caldate.Date) int {
	return (d.Day + 6) / 7
}
