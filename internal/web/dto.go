package web

import (
	"errors"
	"time"

	"github.com/samber/mo"

	"recurcal/internal/caldate"
	"recurcal/internal/picker"
	"recurcal/internal/recurrence"
)

// patternDTO is the wire form of recurrence.Pattern. Weekdays are numbered
// 0 (Sunday) through 6 (Saturday).
type patternDTO struct {
	Type        string        `json:"type"`
	Interval    int           `json:"interval"`
	EndDate     *caldate.Date `json:"end_date,omitempty"`
	DaysOfWeek  []int         `json:"days_of_week,omitempty"`
	MonthlyType string        `json:"monthly_type,omitempty"`
	WeekOfMonth int           `json:"week_of_month,omitempty"`
	DayOfWeek   *int          `json:"day_of_week,omitempty"`
}

// toPattern converts the DTO and validates the result. A missing type is a
// one-time event and a missing interval is 1.
func (p patternDTO) toPattern() (recurrence.Pattern, error) {
	out := recurrence.Default()
	if p.Type != "" {
		out.Type = recurrence.Type(p.Type)
	}
	if p.Interval != 0 {
		out.Interval = p.Interval
	}
	if p.EndDate != nil {
		out.EndDate = mo.Some(*p.EndDate)
	}
	out.DaysOfWeek = weekdays(p.DaysOfWeek)
	if p.MonthlyType != "" {
		out.MonthlyType = recurrence.MonthlyType(p.MonthlyType)
	}
	out.WeekOfMonth = p.WeekOfMonth
	if p.DayOfWeek != nil {
		out.DayOfWeek = mo.Some(time.Weekday(*p.DayOfWeek))
	}

	if err := out.Validate(); err != nil {
		return recurrence.Pattern{}, err
	}
	return out, nil
}

func newPatternDTO(p recurrence.Pattern) patternDTO {
	out := patternDTO{
		Type:        string(p.Type),
		Interval:    p.Interval,
		MonthlyType: string(p.MonthlyType),
		WeekOfMonth: p.WeekOfMonth,
	}
	if end, ok := p.EndDate.Get(); ok {
		out.EndDate = &end
	}
	for _, d := range p.DaysOfWeek {
		out.DaysOfWeek = append(out.DaysOfWeek, int(d))
	}
	if dow, ok := p.DayOfWeek.Get(); ok {
		n := int(dow)
		out.DayOfWeek = &n
	}
	return out
}

func weekdays(in []int) []time.Weekday {
	if len(in) == 0 {
		return nil
	}
	out := make([]time.Weekday, 0, len(in))
	for _, d := range in {
		out = append(out, time.Weekday(d))
	}
	return out
}

// patternPatchDTO is a partial pattern. Absent fields are left alone. An
// empty end_date string clears the end date and a negative day_of_week
// clears the weekday.
type patternPatchDTO struct {
	Type        *string `json:"type,omitempty"`
	Interval    *int    `json:"interval,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	DaysOfWeek  *[]int  `json:"days_of_week,omitempty"`
	MonthlyType *string `json:"monthly_type,omitempty"`
	WeekOfMonth *int    `json:"week_of_month,omitempty"`
	DayOfWeek   *int    `json:"day_of_week,omitempty"`
}

func (p patternPatchDTO) toUpdate() (picker.PatternUpdate, error) {
	var u picker.PatternUpdate
	if p.Type != nil {
		u.Type = mo.Some(recurrence.Type(*p.Type))
	}
	if p.Interval != nil {
		u.Interval = mo.Some(*p.Interval)
	}
	if p.EndDate != nil {
		if *p.EndDate == "" {
			u.EndDate = mo.Some(mo.None[caldate.Date]())
		} else {
			d, err := caldate.Parse(*p.EndDate)
			if err != nil {
				return picker.PatternUpdate{}, err
			}
			u.EndDate = mo.Some(mo.Some(d))
		}
	}
	if p.DaysOfWeek != nil {
		u.DaysOfWeek = mo.Some(weekdays(*p.DaysOfWeek))
	}
	if p.MonthlyType != nil {
		u.MonthlyType = mo.Some(recurrence.MonthlyType(*p.MonthlyType))
	}
	if p.WeekOfMonth != nil {
		u.WeekOfMonth = mo.Some(*p.WeekOfMonth)
	}
	if p.DayOfWeek != nil {
		if *p.DayOfWeek < 0 {
			u.DayOfWeek = mo.Some(mo.None[time.Weekday]())
		} else {
			u.DayOfWeek = mo.Some(mo.Some(time.Weekday(*p.DayOfWeek)))
		}
	}
	return u, nil
}

// actionDTO is the wire form of picker.Action.
type actionDTO struct {
	Type    string          `json:"type"`
	Date    *caldate.Date   `json:"date,omitempty"`
	Dates   []caldate.Date  `json:"dates,omitempty"`
	Pattern patternPatchDTO `json:"pattern"`
}

var errMissingDate = errors.New("date is required")

// toAction converts the DTO. current is the store's pattern, used to
// validate a partial pattern update before it is dispatched.
func (a actionDTO) toAction(current recurrence.Pattern) (picker.Action, error) {
	out := picker.Action{Type: picker.ActionType(a.Type)}

	switch out.Type {
	case picker.ActionSetStartDate, picker.ActionAddSelectedDate, picker.ActionRemoveSelectedDate:
		if a.Date == nil {
			return picker.Action{}, errMissingDate
		}
		out.Date = *a.Date
	case picker.ActionSetSelectedDates:
		out.Dates = a.Dates
	case picker.ActionSetRecurrencePattern:
		u, err := a.Pattern.toUpdate()
		if err != nil {
			return picker.Action{}, err
		}
		if err := u.Merge(current).Validate(); err != nil {
			return picker.Action{}, err
		}
		out.Pattern = u
	case picker.ActionTogglePicker, picker.ActionResetPicker:
	default:
		return picker.Action{}, errors.New("unknown action type " + a.Type)
	}
	return out, nil
}

type pickerStateResponse struct {
	StartDate     caldate.Date   `json:"start_date"`
	Pattern       patternDTO     `json:"pattern"`
	SelectedDates []caldate.Date `json:"selected_dates"`
	Open          bool           `json:"open"`
	Display       string         `json:"display"`
	Description   string         `json:"description"`
}

func newPickerStateResponse(st picker.State) pickerStateResponse {
	dates := st.SelectedDates
	if dates == nil {
		dates = []caldate.Date{}
	}
	return pickerStateResponse{
		StartDate:     st.StartDate,
		Pattern:       newPatternDTO(st.Pattern),
		SelectedDates: dates,
		Open:          st.Open,
		Display:       picker.DisplayText(st, ""),
		Description:   recurrence.Describe(st.Pattern),
	}
}
