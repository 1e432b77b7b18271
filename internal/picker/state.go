// Package picker holds the state behind a recurring-date picker widget.
//
// The state is owned by the caller: a Store is created explicitly and
// passed to whatever needs it, and it only changes through Dispatch. The
// recurrence engine never reads from here; everything it needs is passed
// as arguments.
package picker

import (
	"slices"
	"sync"
	"time"

	"github.com/samber/mo"

	"recurcal/internal/caldate"
	"recurcal/internal/recurrence"
)

// State is a snapshot of the picker.
type State struct {
	StartDate     caldate.Date
	Pattern       recurrence.Pattern
	SelectedDates []caldate.Date
	Open          bool
}

// InitialState is the state of a fresh or reset picker anchored on today.
func InitialState(today caldate.Date) State {
	return State{
		StartDate: today,
		Pattern:   recurrence.Default(),
	}
}

func (s State) clone() State {
	c := s
	c.Pattern = s.Pattern.Clone()
	c.SelectedDates = slices.Clone(s.SelectedDates)
	return c
}

// ActionType names a state transition.
type ActionType string

const (
	ActionSetStartDate         ActionType = "SET_START_DATE"
	ActionSetRecurrencePattern ActionType = "SET_RECURRENCE_PATTERN"
	ActionSetSelectedDates     ActionType = "SET_SELECTED_DATES"
	ActionAddSelectedDate      ActionType = "ADD_SELECTED_DATE"
	ActionRemoveSelectedDate   ActionType = "REMOVE_SELECTED_DATE"
	ActionTogglePicker         ActionType = "TOGGLE_PICKER"
	ActionResetPicker          ActionType = "RESET_PICKER"
)

// Action is one state transition. Only the fields relevant to Type are read.
type Action struct {
	Type ActionType

	// Date is the payload of SET_START_DATE, ADD_SELECTED_DATE and
	// REMOVE_SELECTED_DATE.
	Date caldate.Date
	// Dates is the payload of SET_SELECTED_DATES.
	Dates []caldate.Date
	// Pattern is the payload of SET_RECURRENCE_PATTERN.
	Pattern PatternUpdate
}

// PatternUpdate is a partial pattern: present fields overwrite, absent ones
// keep their current value.
type PatternUpdate struct {
	Type        mo.Option[recurrence.Type]
	Interval    mo.Option[int]
	EndDate     mo.Option[mo.Option[caldate.Date]]
	DaysOfWeek  mo.Option[[]time.Weekday]
	MonthlyType mo.Option[recurrence.MonthlyType]
	WeekOfMonth mo.Option[int]
	DayOfWeek   mo.Option[mo.Option[time.Weekday]]
}

// ReplacePattern is an update that overwrites every field with p.
func ReplacePattern(p recurrence.Pattern) PatternUpdate {
	return PatternUpdate{
		Type:        mo.Some(p.Type),
		Interval:    mo.Some(p.Interval),
		EndDate:     mo.Some(p.EndDate),
		DaysOfWeek:  mo.Some(slices.Clone(p.DaysOfWeek)),
		MonthlyType: mo.Some(p.MonthlyType),
		WeekOfMonth: mo.Some(p.WeekOfMonth),
		DayOfWeek:   mo.Some(p.DayOfWeek),
	}
}

// Merge returns p with the present fields of u applied.
func (u PatternUpdate) Merge(p recurrence.Pattern) recurrence.Pattern {
	out := p.Clone()
	if v, ok := u.Type.Get(); ok {
		out.Type = v
	}
	if v, ok := u.Interval.Get(); ok {
		out.Interval = v
	}
	if v, ok := u.EndDate.Get(); ok {
		out.EndDate = v
	}
	if v, ok := u.DaysOfWeek.Get(); ok {
		out.DaysOfWeek = slices.Clone(v)
	}
	if v, ok := u.MonthlyType.Get(); ok {
		out.MonthlyType = v
	}
	if v, ok := u.WeekOfMonth.Get(); ok {
		out.WeekOfMonth = v
	}
	if v, ok := u.DayOfWeek.Get(); ok {
		out.DayOfWeek = v
	}
	return out
}

// Reduce returns the state that results from applying a to s. s is not
// modified. Unknown action types return s unchanged.
func Reduce(s State, a Action, initial State) State {
	next := s.clone()

	switch a.Type {
	case ActionSetStartDate:
		next.StartDate = a.Date
	case ActionSetRecurrencePattern:
		next.Pattern = a.Pattern.Merge(s.Pattern)
	case ActionSetSelectedDates:
		next.SelectedDates = slices.Clone(a.Dates)
	case ActionAddSelectedDate:
		next.SelectedDates = append(next.SelectedDates, a.Date)
	case ActionRemoveSelectedDate:
		next.SelectedDates = slices.DeleteFunc(next.SelectedDates, func(d caldate.Date) bool {
			return d.Equal(a.Date)
		})
	case ActionTogglePicker:
		next.Open = !s.Open
	case ActionResetPicker:
		return initial.clone()
	}

	return next
}

// Store is a mutable holder for a picker State. It is safe for concurrent
// use.
type Store struct {
	mu      sync.RWMutex
	state   State
	initial State
}

// NewStore returns a store in InitialState(today).
func NewStore(today caldate.Date) *Store {
	initial := InitialState(today)
	return &Store{
		state:   initial.clone(),
		initial: initial,
	}
}

// Dispatch applies a and returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a, s.initial)
	return s.state.clone()
}

// Update builds an action from the current state and applies it under a
// single lock, so the check build performs still holds when the action lands.
// If build fails the state is left unchanged and returned with the error.
func (s *Store) Update(build func(State) (Action, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := build(s.state.clone())
	if err != nil {
		return s.state.clone(), err
	}
	s.state = Reduce(s.state, a, s.initial)
	return s.state.clone(), nil
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.clone()
}

// SetStartDate, SetRecurrencePattern and the methods below are shorthands for
// the matching Dispatch call.
func (s *Store) SetStartDate(d caldate.Date) State {
	return s.Dispatch(Action{Type: ActionSetStartDate, Date: d})
}

func (s *Store) SetRecurrencePattern(u PatternUpdate) State {
	return s.Dispatch(Action{Type: ActionSetRecurrencePattern, Pattern: u})
}

func (s *Store) SetSelectedDates(dates []caldate.Date) State {
	return s.Dispatch(Action{Type: ActionSetSelectedDates, Dates: dates})
}

func (s *Store) AddSelectedDate(d caldate.Date) State {
	return s.Dispatch(Action{Type: ActionAddSelectedDate, Date: d})
}

func (s *Store) RemoveSelectedDate(d caldate.Date) State {
	return s.Dispatch(Action{Type: ActionRemoveSelectedDate, Date: d})
}

func (s *Store) TogglePicker() State {
	return s.Dispatch(Action{Type: ActionTogglePicker})
}

func (s *Store) ResetPicker() State {
	return s.Dispatch(Action{Type: ActionResetPicker})
}
