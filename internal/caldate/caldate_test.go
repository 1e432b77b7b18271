package caldate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Normalizes(t *testing.T) {
	assert.Equal(t, Date{2024, time.March, 1}, New(2024, time.February, 30))
	assert.Equal(t, Date{2023, time.December, 31}, New(2024, time.January, 0))
	assert.Equal(t, Date{2025, time.January, 1}, New(2024, time.December, 32))
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		want  Date
	}{
		{"within month", MustParse("2024-01-01"), 4, MustParse("2024-01-05")},
		{"across month", MustParse("2024-01-30"), 3, MustParse("2024-02-02")},
		{"across year", MustParse("2024-12-31"), 1, MustParse("2025-01-01")},
		{"leap day", MustParse("2024-02-28"), 1, MustParse("2024-02-29")},
		{"negative", MustParse("2024-03-01"), -1, MustParse("2024-02-29")},
		{"negative across year", MustParse("2024-01-01"), -1, MustParse("2023-12-31")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.AddDays(tt.n))
		})
	}
}

func TestAddWeeks(t *testing.T) {
	d := MustParse("2024-02-26")
	assert.Equal(t, d.AddDays(14), d.AddWeeks(2))
	assert.Equal(t, MustParse("2024-03-11"), d.AddWeeks(2))
}

func TestAddMonths_Rollover(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		want  Date
	}{
		{"plain", MustParse("2024-01-15"), 1, MustParse("2024-02-15")},
		{"year carry", MustParse("2024-11-15"), 3, MustParse("2025-02-15")},
		{"jan 31 leap year", MustParse("2024-01-31"), 1, MustParse("2024-03-02")},
		{"jan 31 common year", MustParse("2023-01-31"), 1, MustParse("2023-03-03")},
		{"mar 31 to apr", MustParse("2024-03-31"), 1, MustParse("2024-05-01")},
		{"negative", MustParse("2024-03-15"), -3, MustParse("2023-12-15")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.AddMonths(tt.n))
		})
	}
}

func TestAddYears_LeapDay(t *testing.T) {
	assert.Equal(t, MustParse("2025-03-01"), MustParse("2024-02-29").AddYears(1))
	assert.Equal(t, MustParse("2028-02-29"), MustParse("2024-02-29").AddYears(4))
	assert.Equal(t, MustParse("2030-06-10"), MustParse("2024-06-10").AddYears(6))
}

func TestAccessors(t *testing.T) {
	d := MustParse("2024-02-13") // Tuesday
	assert.Equal(t, time.Tuesday, d.Weekday())
	assert.Equal(t, 13, d.DayOfMonth())
	assert.Equal(t, MustParse("2024-02-01"), d.FirstOfMonth())
	assert.Equal(t, MustParse("2024-02-29"), d.LastOfMonth())
}

func TestWeekOfMonth(t *testing.T) {
	// September 2024 starts on a Sunday, June 2024 on a Saturday.
	tests := []struct {
		date string
		want int
	}{
		{"2024-09-01", 1},
		{"2024-09-07", 1},
		{"2024-09-08", 2},
		{"2024-09-30", 5},
		{"2024-06-01", 1},
		{"2024-06-02", 2},
		{"2024-06-30", 6},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.date).WeekOfMonth())
		})
	}
}

func TestCompare(t *testing.T) {
	a := MustParse("2024-01-31")
	b := MustParse("2024-02-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(New(2024, time.January, 31)))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -1, MustParse("2023-12-31").Compare(a))
	assert.Equal(t, 1, a.DaysUntil(b))
	assert.Equal(t, -366, MustParse("2025-01-01").DaysUntil(MustParse("2024-01-01")))
}

func TestDaysUntil_LongSpans(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     int
	}{
		{"one gregorian cycle", "2000-01-01", "2400-01-01", 146097},
		{"whole range", "0001-01-01", "9999-12-31", 3652058},
		{"backwards across centuries", "2024-03-01", "1624-03-01", -146097},
		{"across a non-leap century", "2100-02-28", "2100-03-01", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.from).DaysUntil(MustParse(tt.to)))
		})
	}
}

func TestFormatting(t *testing.T) {
	d := MustParse("2024-01-01")
	assert.Equal(t, "2024-01-01", d.String())
	assert.Equal(t, "Monday, January 1, 2024", d.Long())
	assert.Equal(t, "Jan 1, 2024", d.Short())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("2024-13-01")
	require.Error(t, err)
	_, err = Parse("01/02/2024")
	require.Error(t, err)
}

func TestTextRoundTripInJSON(t *testing.T) {
	type wrapper struct {
		On Date `json:"on"`
	}

	b, err := json.Marshal(wrapper{On: MustParse("2024-02-29")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2024-02-29"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2025-07-04"}`), &w))
	assert.Equal(t, MustParse("2025-07-04"), w.On)

	_, err = json.Marshal(wrapper{})
	assert.Error(t, err)
}

func TestFromTime_IgnoresClock(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	tm := time.Date(2024, 5, 6, 23, 59, 0, 0, loc)
	assert.Equal(t, MustParse("2024-05-06"), FromTime(tm))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 28, DaysInMonth(1900, time.February))
	assert.Equal(t, 29, DaysInMonth(2000, time.February))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
	assert.Equal(t, 28, DaysInMonth(2024, 14))
	assert.Equal(t, 31, DaysInMonth(2024, 0))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(2100))
}
