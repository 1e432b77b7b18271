package model

import (
	"recurcal/internal/caldate"
	"recurcal/internal/recurrence"
)

// Selection is the outcome of applying a recurrence pattern: the anchor date,
// the pattern as it was applied, and the dates it produced.
//
// Dates is always generated from Start and Pattern; callers treat a
// Selection as read-only and copy before changing anything.
type Selection struct {
	Start   caldate.Date
	Pattern recurrence.Pattern
	Dates   []caldate.Date
}

// NewSelection generates the dates for start/pattern with the given cap.
func NewSelection(start caldate.Date, pattern recurrence.Pattern, maxCount int) Selection {
	return Selection{
		Start:   start,
		Pattern: pattern.Clone(),
		Dates:   recurrence.Generate(start, pattern, maxCount),
	}
}

// Description is the human-readable form of the selection's pattern.
func (s Selection) Description() string {
	return recurrence.Describe(s.Pattern)
}

// Len returns the number of dates in the selection.
func (s Selection) Len() int {
	return len(s.Dates)
}
