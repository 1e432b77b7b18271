package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/mo"

	"recurcal/internal/caldate"
)

// Type selects the recurrence frequency.
type Type string

const (
	TypeNone    Type = "none"
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
	TypeYearly  Type = "yearly"
)

// Types lists every known Type in picker order.
var Types = []Type{TypeNone, TypeDaily, TypeWeekly, TypeMonthly, TypeYearly}

// Known reports whether t is one of the defined types.
func (t Type) Known() bool {
	return slices.Contains(Types, t)
}

// MonthlyType selects how a monthly pattern picks its day.
type MonthlyType string

const (
	// MonthlyByDate repeats on the start date's day-of-month.
	MonthlyByDate MonthlyType = "date"
	// MonthlyByWeekday repeats on the Nth occurrence of a weekday.
	MonthlyByWeekday MonthlyType = "weekday"
)

// MaxInterval is the largest interval accepted at the boundary.
const MaxInterval = 365

// ErrInvalidPattern is wrapped by every Validate failure.
var ErrInvalidPattern = errors.New("invalid recurrence pattern")

// Pattern describes how a start date repeats. It is a value type: nothing in
// this package mutates a Pattern passed to it.
type Pattern struct {
	Type     Type
	Interval int

	// EndDate, when present, is the last date a sequence may contain.
	EndDate mo.Option[caldate.Date]

	// DaysOfWeek is only consulted for weekly patterns. When non-empty it
	// fully determines the cadence and Interval is ignored.
	DaysOfWeek []time.Weekday

	// MonthlyType, WeekOfMonth and DayOfWeek are only consulted for monthly
	// patterns. WeekOfMonth is 1..5, zero meaning unset.
	MonthlyType MonthlyType
	WeekOfMonth int
	DayOfWeek   mo.Option[time.Weekday]
}

// Default returns the pattern a fresh picker starts with.
func Default() Pattern {
	return Pattern{
		Type:        TypeNone,
		Interval:    1,
		EndDate:     mo.None[caldate.Date](),
		MonthlyType: MonthlyByDate,
		DayOfWeek:   mo.None[time.Weekday](),
	}
}

// step returns the interval the generator uses; anything below one is one.
func (p Pattern) step() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

// ByWeekdayRule reports whether a monthly pattern uses the Nth-weekday rule.
func (p Pattern) ByWeekdayRule() bool {
	return p.MonthlyType == MonthlyByWeekday && p.WeekOfMonth != 0 && p.DayOfWeek.IsPresent()
}

// Clone returns a copy that shares no slice storage with p.
func (p Pattern) Clone() Pattern {
	c := p
	c.DaysOfWeek = slices.Clone(p.DaysOfWeek)
	return c
}

// Validate checks the invariants the generator relies on. Callers at the
// edge of the system (HTTP handlers, the picker session) run it before
// calling Generate.
func (p Pattern) Validate() error {
	if !p.Type.Known() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidPattern, p.Type)
	}
	if p.Type == TypeNone {
		return nil
	}
	if p.Interval < 1 || p.Interval > MaxInterval {
		return fmt.Errorf("%w: interval must be between 1 and %d, got %d", ErrInvalidPattern, MaxInterval, p.Interval)
	}
	for _, d := range p.DaysOfWeek {
		if !validWeekday(d) {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidPattern, d)
		}
	}
	if p.Type != TypeMonthly {
		return nil
	}

	switch p.MonthlyType {
	case "", MonthlyByDate:
		return nil
	case MonthlyByWeekday:
		if p.WeekOfMonth < 1 || p.WeekOfMonth > 5 {
			return fmt.Errorf("%w: week of month must be between 1 and 5, got %d", ErrInvalidPattern, p.WeekOfMonth)
		}
		dow, ok := p.DayOfWeek.Get()
		if !ok {
			return fmt.Errorf("%w: day of week is required for monthly weekday patterns", ErrInvalidPattern)
		}
		if !validWeekday(dow) {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidPattern, dow)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown monthly type %q", ErrInvalidPattern, p.MonthlyType)
	}
}

func validWeekday(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday
}

// WeekdaySet returns days sorted Sunday-first with duplicates removed.
func WeekdaySet(days ...time.Weekday) []time.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}
