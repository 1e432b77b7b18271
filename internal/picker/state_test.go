package picker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recurcal/internal/caldate"
	"recurcal/internal/recurrence"
)

var today = caldate.MustParse("2024-01-10")

func TestReduce_DoesNotMutateInput(t *testing.T) {
	initial := InitialState(today)
	s := initial
	s.SelectedDates = []caldate.Date{today}

	next := Reduce(s, Action{Type: ActionAddSelectedDate, Date: today.AddDays(1)}, initial)

	assert.Len(t, s.SelectedDates, 1)
	assert.Len(t, next.SelectedDates, 2)
}

func TestReduce_Actions(t *testing.T) {
	initial := InitialState(today)
	d1 := caldate.MustParse("2024-02-01")
	d2 := caldate.MustParse("2024-02-02")

	tests := []struct {
		name   string
		state  State
		action Action
		check  func(t *testing.T, got State)
	}{
		{
			name:   "set start date",
			state:  initial,
			action: Action{Type: ActionSetStartDate, Date: d1},
			check: func(t *testing.T, got State) {
				assert.Equal(t, d1, got.StartDate)
			},
		},
		{
			name:  "set pattern merges",
			state: initial,
			action: Action{Type: ActionSetRecurrencePattern, Pattern: PatternUpdate{
				Type:     mo.Some(recurrence.TypeDaily),
				Interval: mo.Some(3),
			}},
			check: func(t *testing.T, got State) {
				assert.Equal(t, recurrence.TypeDaily, got.Pattern.Type)
				assert.Equal(t, 3, got.Pattern.Interval)
				assert.Equal(t, recurrence.MonthlyByDate, got.Pattern.MonthlyType)
			},
		},
		{
			name:   "set selected dates",
			state:  initial,
			action: Action{Type: ActionSetSelectedDates, Dates: []caldate.Date{d1, d2}},
			check: func(t *testing.T, got State) {
				assert.Equal(t, []caldate.Date{d1, d2}, got.SelectedDates)
			},
		},
		{
			name:   "remove selected date",
			state:  State{SelectedDates: []caldate.Date{d1, d2, d1}},
			action: Action{Type: ActionRemoveSelectedDate, Date: d1},
			check: func(t *testing.T, got State) {
				assert.Equal(t, []caldate.Date{d2}, got.SelectedDates)
			},
		},
		{
			name:   "toggle picker",
			state:  initial,
			action: Action{Type: ActionTogglePicker},
			check: func(t *testing.T, got State) {
				assert.True(t, got.Open)
			},
		},
		{
			name:   "reset picker",
			state:  State{StartDate: d1, Open: true, SelectedDates: []caldate.Date{d1}},
			action: Action{Type: ActionResetPicker},
			check: func(t *testing.T, got State) {
				assert.Equal(t, initial, got)
			},
		},
		{
			name:   "unknown action",
			state:  State{StartDate: d2},
			action: Action{Type: "FLY"},
			check: func(t *testing.T, got State) {
				assert.Equal(t, State{StartDate: d2}, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Reduce(tt.state, tt.action, initial))
		})
	}
}

func TestPatternUpdate_ClearsOptionalFields(t *testing.T) {
	p := recurrence.Default()
	p.EndDate = mo.Some(today)
	p.DayOfWeek = mo.Some(time.Friday)

	got := PatternUpdate{
		EndDate:   mo.Some(mo.None[caldate.Date]()),
		DayOfWeek: mo.Some(mo.None[time.Weekday]()),
	}.Merge(p)

	assert.False(t, got.EndDate.IsPresent())
	assert.False(t, got.DayOfWeek.IsPresent())
	assert.True(t, p.EndDate.IsPresent())
}

func TestReplacePattern(t *testing.T) {
	p := recurrence.Pattern{
		Type:       recurrence.TypeWeekly,
		Interval:   2,
		DaysOfWeek: []time.Weekday{time.Tuesday},
		EndDate:    mo.Some(today),
	}

	got := ReplacePattern(p).Merge(recurrence.Default())
	assert.Equal(t, p, got)
}

func TestStore_Dispatch(t *testing.T) {
	store := NewStore(today)

	st := store.TogglePicker()
	assert.True(t, st.Open)

	store.AddSelectedDate(today)
	store.AddSelectedDate(today.AddDays(1))
	st = store.RemoveSelectedDate(today)
	assert.Equal(t, []caldate.Date{today.AddDays(1)}, st.SelectedDates)

	// Returned state is a copy.
	st.SelectedDates[0] = today.AddDays(99)
	assert.Equal(t, today.AddDays(1), store.State().SelectedDates[0])

	st = store.ResetPicker()
	assert.Equal(t, InitialState(today), st)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := NewStore(today)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.AddSelectedDate(today.AddDays(i*50 + j))
				_ = store.State()
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, store.State().SelectedDates, 1000)
}

// validPatternUpdate builds a pattern action that is rejected when the merged
// pattern would not validate.
func validPatternUpdate(u PatternUpdate) func(State) (Action, error) {
	return func(st State) (Action, error) {
		if err := u.Merge(st.Pattern).Validate(); err != nil {
			return Action{}, err
		}
		return Action{Type: ActionSetRecurrencePattern, Pattern: u}, nil
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(today)

	st, err := store.Update(validPatternUpdate(PatternUpdate{
		Type:        mo.Some(recurrence.TypeMonthly),
		MonthlyType: mo.Some(recurrence.MonthlyByWeekday),
		WeekOfMonth: mo.Some(2),
		DayOfWeek:   mo.Some(mo.Some(time.Tuesday)),
	}))
	require.NoError(t, err)
	assert.Equal(t, recurrence.MonthlyByWeekday, st.Pattern.MonthlyType)

	before := store.State()
	st, err = store.Update(validPatternUpdate(PatternUpdate{DayOfWeek: mo.Some(mo.None[time.Weekday]())}))
	require.ErrorIs(t, err, recurrence.ErrInvalidPattern)
	assert.Equal(t, before, st)
	assert.Equal(t, before, store.State())

	boom := errors.New("boom")
	_, err = store.Update(func(State) (Action, error) { return Action{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, store.State())
}

func TestStore_ConcurrentUpdateKeepsPatternValid(t *testing.T) {
	store := NewStore(today)
	store.SetRecurrencePattern(PatternUpdate{
		Type:        mo.Some(recurrence.TypeMonthly),
		MonthlyType: mo.Some(recurrence.MonthlyByDate),
		WeekOfMonth: mo.Some(2),
	})

	// Each update is valid against some reachable state but not all of them.
	updates := []PatternUpdate{
		{MonthlyType: mo.Some(recurrence.MonthlyByWeekday)},
		{MonthlyType: mo.Some(recurrence.MonthlyByDate)},
		{DayOfWeek: mo.Some(mo.Some(time.Tuesday))},
		{DayOfWeek: mo.Some(mo.None[time.Weekday]())},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				st, _ := store.Update(validPatternUpdate(updates[(i+j)%len(updates)]))
				assert.NoError(t, st.Pattern.Validate())
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.State().Pattern.Validate())
}
