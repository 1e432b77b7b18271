package picker

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/mo"

	"recurcal/internal/caldate"
	"recurcal/internal/model"
	"recurcal/internal/recurrence"
)

// defaultEndMonths is how far past the start a freshly enabled end date lands.
const defaultEndMonths = 3

// Session is an editing draft on top of a Store. Changes stay local until
// Apply commits them; Cancel throws them away.
//
// A Session is not safe for concurrent use; each editor owns one.
type Session struct {
	// WeekStart is the first column of CalendarView. The zero value is Sunday.
	WeekStart time.Weekday
	// CommitCount caps the dates Apply stores; zero means
	// recurrence.CommitCount.
	CommitCount int

	start   caldate.Date
	pattern recurrence.Pattern
	visible caldate.Date // first day of the month shown by CalendarView
}

// NewSession starts a draft from the store's committed state.
func NewSession(store *Store) *Session {
	s := &Session{}
	s.load(store.State())
	return s
}

func (s *Session) load(st State) {
	s.start = st.StartDate
	s.pattern = st.Pattern.Clone()
	s.visible = st.StartDate.FirstOfMonth()
}

// Start returns the draft start date.
func (s *Session) Start() caldate.Date { return s.start }

// Pattern returns a copy of the draft pattern.
func (s *Session) Pattern() recurrence.Pattern { return s.pattern.Clone() }

// Visible returns the first day of the month shown by CalendarView.
func (s *Session) Visible() caldate.Date { return s.visible }

// HasEndDate reports whether the draft pattern carries an end date.
func (s *Session) HasEndDate() bool { return s.pattern.EndDate.IsPresent() }

// SetStart moves the draft start date and shows its month.
func (s *Session) SetStart(d caldate.Date) {
	s.start = d
	s.visible = d.FirstOfMonth()
}

// SetPattern replaces the whole draft pattern.
func (s *Session) SetPattern(p recurrence.Pattern) {
	s.pattern = p.Clone()
}

// ChangeType switches the recurrence type and resets the type-specific
// fields. A weekly pattern starts out on the start date's weekday.
func (s *Session) ChangeType(t recurrence.Type) {
	s.pattern.Type = t
	s.pattern.Interval = 1
	s.pattern.DaysOfWeek = nil
	if t == recurrence.TypeWeekly {
		s.pattern.DaysOfWeek = []time.Weekday{s.start.Weekday()}
	}
	s.pattern.WeekOfMonth = 0
	s.pattern.DayOfWeek = mo.None[time.Weekday]()
	s.pattern.MonthlyType = recurrence.MonthlyByDate
}

// SetInterval sets the interval, clamped to 1..recurrence.MaxInterval.
func (s *Session) SetInterval(n int) {
	s.pattern.Interval = min(max(n, 1), recurrence.MaxInterval)
}

// ToggleWeekday adds d to the weekly day set, or removes it if present.
func (s *Session) ToggleWeekday(d time.Weekday) {
	if i := slices.Index(s.pattern.DaysOfWeek, d); i >= 0 {
		s.pattern.DaysOfWeek = slices.Delete(slices.Clone(s.pattern.DaysOfWeek), i, i+1)
		return
	}
	s.pattern.DaysOfWeek = recurrence.WeekdaySet(append(slices.Clone(s.pattern.DaysOfWeek), d)...)
}

// ToggleEndDate enables an end date three months after the start, or
// removes the end date if one is set.
func (s *Session) ToggleEndDate() {
	if s.pattern.EndDate.IsPresent() {
		s.pattern.EndDate = mo.None[caldate.Date]()
		return
	}
	s.pattern.EndDate = mo.Some(s.start.AddMonths(defaultEndMonths))
}

// SetEndDate sets an explicit end date.
func (s *Session) SetEndDate(d caldate.Date) {
	s.pattern.EndDate = mo.Some(d)
}

// SetMonthlyType switches between day-of-month and Nth-weekday recurrence.
// The weekday rule is seeded from the start date, e.g. the 9th of a month
// that falls on a Tuesday becomes "second Tuesday".
func (s *Session) SetMonthlyType(mt recurrence.MonthlyType) {
	s.pattern.MonthlyType = mt
	if mt == recurrence.MonthlyByWeekday {
		s.pattern.WeekOfMonth = recurrence.OrdinalWeekOf(s.start)
		s.pattern.DayOfWeek = mo.Some(s.start.Weekday())
		return
	}
	s.pattern.WeekOfMonth = 0
	s.pattern.DayOfWeek = mo.None[time.Weekday]()
}

// Preview returns the first few dates of the draft.
func (s *Session) Preview() []caldate.Date {
	if s.pattern.Type == recurrence.TypeNone {
		return []caldate.Date{s.start}
	}
	return recurrence.Generate(s.start, s.pattern, recurrence.PreviewCount)
}

// NavigateMonth moves the visible month by delta months.
func (s *Session) NavigateMonth(delta int) {
	s.visible = s.visible.AddMonths(delta)
}

// Select handles a click on a calendar cell: days of the visible month
// become the new start, padding days are ignored.
func (s *Session) Select(d caldate.Date) bool {
	if !d.SameMonth(s.visible) {
		return false
	}
	s.start = d
	return true
}

// Apply validates the draft, generates the committed dates and writes
// start, pattern and dates to store, then closes the picker if it is open.
func (s *Session) Apply(store *Store) (model.Selection, error) {
	if err := s.pattern.Validate(); err != nil {
		return model.Selection{}, fmt.Errorf("picker: apply: %w", err)
	}

	n := s.CommitCount
	if n <= 0 {
		n = recurrence.CommitCount
	}
	sel := model.NewSelection(s.start, s.pattern, n)
	store.SetStartDate(sel.Start)
	store.SetRecurrencePattern(ReplacePattern(sel.Pattern))
	store.SetSelectedDates(sel.Dates)
	closePicker(store)

	return sel, nil
}

// Open reloads the draft from the committed state and opens the picker.
func (s *Session) Open(store *Store) {
	st := store.State()
	if !st.Open {
		st = store.TogglePicker()
	}
	s.load(st)
}

// Cancel discards the draft and closes the picker if it is open.
func (s *Session) Cancel(store *Store) {
	s.load(store.State())
	closePicker(store)
}

func closePicker(store *Store) {
	if store.State().Open {
		store.TogglePicker()
	}
}

// Reset clears both the store and the draft back to a one-time pattern on
// today.
func (s *Session) Reset(store *Store, today caldate.Date) {
	st := store.ResetPicker()
	st.StartDate = today
	s.load(st)
}
