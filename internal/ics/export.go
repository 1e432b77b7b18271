package ics

import (
	"errors"
	"slices"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"recurcal/internal/caldate"
	appLog "recurcal/internal/log"
	"recurcal/internal/model"
	"recurcal/internal/recurrence"
)

const (
	defaultProductID = "-//recurcal//recurring dates//EN"
	icsDateLayout    = "20060102"
)

// Options controls the emitted calendar. Zero values fall back to defaults.
type Options struct {
	// ProductID is written as PRODID.
	ProductID string
	// Summary is the event title. Defaults to the pattern description.
	Summary string
	// UID is the event UID. Defaults to a random UUID.
	UID string
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

// rruleWeekdays maps time.Weekday (Sunday = 0) to rrule-go weekdays.
var rruleWeekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Export renders sel as a VCALENDAR holding a single all-day VEVENT.
//
// The recurrence is written as an RRULE when RRuleFor can express the
// selection exactly, and as one RDATE per remaining date otherwise, so a
// consumer always expands to exactly sel.Dates.
func Export(sel model.Selection, opts Options) (string, error) {
	if len(sel.Dates) == 0 {
		return "", errors.New("ics: selection has no dates")
	}
	if !sel.Dates[0].Equal(sel.Start) {
		return "", errors.New("ics: selection does not start at its start date")
	}

	if opts.ProductID == "" {
		opts.ProductID = defaultProductID
	}
	if opts.Summary == "" {
		opts.Summary = sel.Description()
	}
	if opts.UID == "" {
		opts.UID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)

	ev := cal.AddEvent(opts.UID)
	ev.SetDtStampTime(opts.Now().UTC())
	ev.SetSummary(opts.Summary)
	ev.SetAllDayStartAt(sel.Start.Time())
	ev.SetAllDayEndAt(sel.Start.AddDays(1).Time())

	if rule, ok := RRuleFor(sel); ok {
		ev.AddRrule(rule)
		appLog.Debug("ics export: rrule", "uid", opts.UID, "rrule", rule, "count", len(sel.Dates))
	} else if len(sel.Dates) > 1 {
		for _, d := range sel.Dates[1:] {
			ev.AddProperty(ical.ComponentPropertyRdate, FormatDate(d), ical.WithValue(string(ical.ValueDataTypeDate)))
		}
		appLog.Debug("ics export: rdate list", "uid", opts.UID, "count", len(sel.Dates))
	}

	return cal.Serialize(), nil
}

// FormatDate renders d as an iCalendar DATE value (YYYYMMDD).
func FormatDate(d caldate.Date) string {
	return d.Time().Format(icsDateLayout)
}

// RRuleFor returns an RRULE value (without the "RRULE:" prefix) that
// expands from sel.Start to exactly sel.Dates, or false when the pattern's
// behaviour from that start has no exact RRULE equivalent: day-of-month
// rollover, a start outside its own weekday rule, and so on.
func RRuleFor(sel model.Selection) (string, bool) {
	if len(sel.Dates) < 2 {
		return "", false
	}

	p := sel.Pattern
	start := sel.Start
	opt := rrule.ROption{
		Interval: max(p.Interval, 1),
		Count:    len(sel.Dates),
	}

	switch p.Type {
	case recurrence.TypeDaily:
		opt.Freq = rrule.DAILY
	case recurrence.TypeWeekly:
		opt.Freq = rrule.WEEKLY
		if len(p.DaysOfWeek) > 0 {
			days := recurrence.WeekdaySet(p.DaysOfWeek...)
			if !slices.Contains(days, start.Weekday()) {
				return "", false
			}
			opt.Interval = 1
			for _, d := range days {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
			}
		}
	case recurrence.TypeMonthly:
		opt.Freq = rrule.MONTHLY
		if p.ByWeekdayRule() {
			nth, ok := monthlyNth(start, p.WeekOfMonth, p.DayOfWeek.MustGet())
			if !ok || !monthsStepBy(sel.Dates, opt.Interval) {
				return "", false
			}
			wd := rruleWeekdays[p.DayOfWeek.MustGet()]
			opt.Byweekday = []rrule.Weekday{wd.Nth(nth)}
		} else if start.Day > 28 {
			return "", false
		}
	case recurrence.TypeYearly:
		opt.Freq = rrule.YEARLY
		if start.Month == time.February && start.Day == 29 {
			return "", false
		}
	default:
		return "", false
	}

	return opt.RRuleString(), true
}

// monthlyNth maps a week-of-month rule to an RRULE BYDAY ordinal, provided
// start itself satisfies the rule. The fifth occurrence falls back to the
// fourth when missing, which is the same as "last" (-1).
func monthlyNth(start caldate.Date, weekOfMonth int, dow time.Weekday) (int, bool) {
	if start.Weekday() != dow {
		return 0, false
	}
	if weekOfMonth == 5 {
		isLast := start.Day+7 > caldate.DaysInMonth(start.Year, start.Month)
		return -1, isLast
	}
	return weekOfMonth, recurrence.OrdinalWeekOf(start) == weekOfMonth
}

// monthsStepBy reports whether each date lies exactly interval months after
// the one before it. The weekday search rolls a 29th-31st past a short month,
// which an RRULE cannot express.
func monthsStepBy(dates []caldate.Date, interval int) bool {
	for i := 1; i < len(dates); i++ {
		if monthIndex(dates[i])-monthIndex(dates[i-1]) != interval {
			return false
		}
	}
	return true
}

func monthIndex(d caldate.Date) int {
	return d.Year*12 + int(d.Month) - 1
}
