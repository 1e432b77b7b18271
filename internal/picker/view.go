package picker

import (
	"fmt"

	"recurcal/internal/caldate"
	"recurcal/internal/grid"
	"recurcal/internal/recurrence"
)

// DefaultPlaceholder is shown before anything has been selected.
const DefaultPlaceholder = "Select recurring dates..."

// Cell is one day of the month view.
type Cell struct {
	Date       caldate.Date
	OtherMonth bool // padding day from the previous or next month
	Start      bool // the draft start date
	Recurring  bool // a preview occurrence other than the start
}

// CalendarView lays out the visible month with the draft's preview marked.
func (s *Session) CalendarView() []Cell {
	preview := s.Preview()
	marked := make(map[caldate.Date]struct{}, len(preview))
	for _, d := range preview {
		marked[d] = struct{}{}
	}

	dates := grid.Month(s.visible.Year, s.visible.Month, s.WeekStart)
	cells := make([]Cell, 0, len(dates))
	for _, d := range dates {
		isStart := d.Equal(s.start)
		_, inPreview := marked[d]
		cells = append(cells, Cell{
			Date:       d,
			OtherMonth: !d.SameMonth(s.visible),
			Start:      isStart,
			Recurring:  inPreview && !isStart,
		})
	}
	return cells
}

// Title is the heading of the visible month, e.g. "February 2024".
func (s *Session) Title() string {
	return s.visible.Time().Format("January 2006")
}

// DisplayText summarises the committed selection for the picker's button.
func DisplayText(st State, placeholder string) string {
	if len(st.SelectedDates) == 0 {
		if placeholder == "" {
			return DefaultPlaceholder
		}
		return placeholder
	}
	if st.Pattern.Type == recurrence.TypeNone {
		return "Selected: " + st.SelectedDates[0].Short()
	}
	return fmt.Sprintf("%s from %s (%d dates)", recurrence.Label(st.Pattern.Type), st.StartDate.Short(), len(st.SelectedDates))
}
