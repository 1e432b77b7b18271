package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		wantErr string
	}{
		{
			name:    "default is valid",
			pattern: Default(),
		},
		{
			name:    "none ignores other fields",
			pattern: Pattern{Type: TypeNone, Interval: -4},
		},
		{
			name:    "daily",
			pattern: daily(3),
		},
		{
			name:    "unknown type",
			pattern: Pattern{Type: "hourly", Interval: 1},
			wantErr: `unknown type "hourly"`,
		},
		{
			name:    "zero interval",
			pattern: daily(0),
			wantErr: "interval must be between 1 and 365, got 0",
		},
		{
			name:    "interval too large",
			pattern: daily(MaxInterval + 1),
			wantErr: "interval must be between 1 and 365, got 366",
		},
		{
			name:    "weekday out of range",
			pattern: Pattern{Type: TypeWeekly, Interval: 1, DaysOfWeek: []time.Weekday{7}},
			wantErr: "weekday 7 out of range",
		},
		{
			name:    "monthly weekday",
			pattern: monthlyWeekday(5, time.Tuesday, 1),
		},
		{
			name:    "week of month too large",
			pattern: monthlyWeekday(6, time.Tuesday, 1),
			wantErr: "week of month must be between 1 and 5, got 6",
		},
		{
			name: "missing day of week",
			pattern: Pattern{
				Type:        TypeMonthly,
				Interval:    1,
				MonthlyType: MonthlyByWeekday,
				WeekOfMonth: 2,
				DayOfWeek:   mo.None[time.Weekday](),
			},
			wantErr: "day of week is required",
		},
		{
			name:    "day of week out of range",
			pattern: monthlyWeekday(1, time.Weekday(-1), 1),
			wantErr: "weekday -1 out of range",
		},
		{
			name:    "unknown monthly type",
			pattern: Pattern{Type: TypeMonthly, Interval: 1, MonthlyType: "lunar"},
			wantErr: `unknown monthly type "lunar"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pattern.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidPattern)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestWeekdaySet(t *testing.T) {
	got := WeekdaySet(time.Friday, time.Monday, time.Friday, time.Sunday)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Monday, time.Friday}, got)
	assert.Empty(t, WeekdaySet())
}

func TestClone_DoesNotShareDays(t *testing.T) {
	p := Pattern{Type: TypeWeekly, DaysOfWeek: []time.Weekday{time.Monday}}
	c := p.Clone()
	c.DaysOfWeek[0] = time.Friday
	assert.Equal(t, time.Monday, p.DaysOfWeek[0])
}

func TestDescribe(t *testing.T) {
	weekly := Pattern{Type: TypeWeekly, Interval: 1, DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday}}

	tests := []struct {
		pattern Pattern
		want    string
	}{
		{Default(), "One-time event"},
		{daily(1), "Every day"},
		{daily(2), "Every 2 days"},
		{weekly, "Weekly on Monday, Wednesday"},
		{Pattern{Type: TypeWeekly, Interval: 3}, "Every 3 weeks"},
		{monthlyWeekday(2, time.Tuesday, 1), "Monthly on the second Tuesday"},
		{monthlyWeekday(5, time.Friday, 2), "Monthly on the fifth Friday"},
		{Pattern{Type: TypeMonthly, Interval: 1, MonthlyType: MonthlyByDate}, "Every month"},
		{Pattern{Type: TypeYearly, Interval: 2}, "Every 2 years"},
		{Pattern{Type: TypeYearly}, "Every year"},
		{Pattern{Type: "custom"}, "Custom pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.pattern))
		})
	}
}

func TestOrdinalAndUnit(t *testing.T) {
	assert.Equal(t, "first", Ordinal(1))
	assert.Equal(t, "fifth", Ordinal(5))
	assert.Equal(t, "6th", Ordinal(6))
	assert.Equal(t, "week", Unit(TypeWeekly, 1))
	assert.Equal(t, "months", Unit(TypeMonthly, 4))
	assert.Equal(t, "", Unit(TypeNone, 1))
	assert.Equal(t, "Once", Label(TypeNone))
	assert.Equal(t, "Daily", Label(TypeDaily))
}
