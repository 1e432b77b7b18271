package recurrence

import (
	"fmt"
	"strconv"
	"strings"
)

var ordinals = []string{"", "first", "second", "third", "fourth", "fifth"}

// Ordinal spells out 1..5 ("first".."fifth"); other values become "Nth".
func Ordinal(n int) string {
	if n > 0 && n < len(ordinals) {
		return ordinals[n]
	}
	return strconv.Itoa(n) + "th"
}

// Unit returns the singular or plural unit noun for t and interval,
// e.g. "day"/"days". Unknown types return "".
func Unit(t Type, interval int) string {
	var unit string
	switch t {
	case TypeDaily:
		unit = "day"
	case TypeWeekly:
		unit = "week"
	case TypeMonthly:
		unit = "month"
	case TypeYearly:
		unit = "year"
	default:
		return ""
	}
	if interval > 1 {
		unit += "s"
	}
	return unit
}

// Label is the short name of a type as shown on the picker's display text.
func Label(t Type) string {
	switch t {
	case TypeNone:
		return "Once"
	case TypeDaily:
		return "Daily"
	case TypeWeekly:
		return "Weekly"
	case TypeMonthly:
		return "Monthly"
	case TypeYearly:
		return "Yearly"
	default:
		return "Custom"
	}
}

// Describe renders p as a human-readable sentence, e.g. "Every 2 weeks" or
// "Monthly on the second Tuesday".
func Describe(p Pattern) string {
	switch p.Type {
	case TypeNone:
		return "One-time event"
	case TypeWeekly:
		if len(p.DaysOfWeek) > 0 {
			names := make([]string, 0, len(p.DaysOfWeek))
			for _, d := range p.DaysOfWeek {
				names = append(names, d.String())
			}
			return "Weekly on " + strings.Join(names, ", ")
		}
	case TypeMonthly:
		if p.ByWeekdayRule() {
			return fmt.Sprintf("Monthly on the %s %s", Ordinal(p.WeekOfMonth), p.DayOfWeek.MustGet())
		}
	case TypeDaily, TypeYearly:
	default:
		return "Custom pattern"
	}
	return every(p)
}

func every(p Pattern) string {
	n := p.step()
	if n == 1 {
		return "Every " + Unit(p.Type, n)
	}
	return fmt.Sprintf("Every %d %s", n, Unit(p.Type, n))
}
