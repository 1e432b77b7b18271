// Package caldate implements a civil calendar date: a year, month and day
// with no time-of-day and no timezone.
//
// All arithmetic goes through time.Date in UTC, so out-of-range components
// are normalized the way the Go calendar normalizes them: adding one month
// to January 31st yields Feb 31st, i.e. March 2nd or 3rd. That rollover
// policy is applied consistently by AddMonths and AddYears.
package caldate

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical text form of a Date.
const Layout = "2006-01-02"

// Display layouts (en-US).
const (
	LongLayout  = "Monday, January 2, 2006"
	ShortLayout = "Jan 2, 2006"
)

// Date is a calendar date. The zero value is not a valid date; use New,
// Parse or FromTime to construct one.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the date for the given components, normalizing overflow
// (e.g. New(2024, 2, 30) is 2024-03-01).
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local date.
func Today() Date {
	return FromTime(time.Now())
}

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("caldate: parse %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of d. The location carries no meaning; it only
// backs the arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns d shifted by n days. n may be negative.
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// AddWeeks returns d shifted by 7n days.
func (d Date) AddWeeks(n int) Date {
	return d.AddDays(7 * n)
}

// AddMonths shifts the month component by n, carrying into the year.
// A day-of-month that does not exist in the target month rolls over into
// the following month.
func (d Date) AddMonths(n int) Date {
	return New(d.Year, d.Month+time.Month(n), d.Day)
}

// AddYears shifts the year component by n. Feb 29 in a non-leap target year
// rolls over to Mar 1.
func (d Date) AddYears(n int) Date {
	return New(d.Year+n, d.Month, d.Day)
}

// Weekday returns the day of the week, Sunday = 0.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// DayOfMonth returns the day-of-month component.
func (d Date) DayOfMonth() int {
	return d.Day
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// LastOfMonth returns the last day of d's month.
func (d Date) LastOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: DaysInMonth(d.Year, d.Month)}
}

// WeekOfMonth returns the calendar row (1-based, Sunday-first weeks) that d
// falls in: ceil((day + weekday of the 1st) / 7).
func (d Date) WeekOfMonth() int {
	first := int(d.FirstOfMonth().Weekday())
	return (d.Day + first + 6) / 7
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d.Compare(o) == 0 }

// SameMonth reports whether d and o share year and month.
func (d Date) SameMonth(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month
}

// DaysUntil returns the number of days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return o.dayNumber() - d.dayNumber()
}

// dayNumber is the proleptic Gregorian Julian day number of d.
func (d Date) dayNumber() int {
	n := d.Time()
	a := (14 - int(n.Month())) / 12
	y := n.Year() + 4800 - a
	m := int(n.Month()) + 12*a - 3
	return n.Day() + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return d.Time().Format(Layout)
}

// Long formats d as "Monday, January 1, 2024".
func (d Date) Long() string {
	return d.Time().Format(LongLayout)
}

// Short formats d as "Jan 1, 2024".
func (d Date) Short() string {
	return d.Time().Format(ShortLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, errors.New("caldate: cannot marshal zero date")
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var monthDays = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given month. Months outside
// 1-12 carry into neighbouring years.
func DaysInMonth(year int, month time.Month) int {
	first := New(year, month, 1)
	if first.Month == time.February && IsLeapYear(first.Year) {
		return 29
	}
	return monthDays[first.Month-1]
}

// IsLeapYear reports whether year has a Feb 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
