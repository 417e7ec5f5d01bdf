// Package relative turns a past calendar date into an elapsed-time phrase
// such as "2 years 4 months ago", measured against a reference date.
package relative

import (
	"fmt"

	"date-deidentifier/internal/calendar"
)

// Fixed phrases.
const (
	Recently = "recently"
	Today    = "today"
)

// Span is the calendar distance between two dates.
type Span struct {
	Years  int
	Months int
	Days   int
}

// Elapsed decomposes the distance from parsed to reference into whole years,
// whole months and remaining days. Years and months are counted by probing
// calendar increments, so Feb 29 anniversaries and short months are handled
// the way a calendar reader expects. It returns false when parsed is after reference.
func Elapsed(parsed, reference calendar.Date) (Span, bool) {
	if parsed.After(reference) {
		return Span{}, false
	}

	years := 0
	for !parsed.AddYears(years + 1).After(reference) {
		years++
	}
	anchor := parsed.AddYears(years)

	months := 0
	for !anchor.AddMonths(months + 1).After(reference) {
		months++
	}

	return Span{
		Years:  years,
		Months: months,
		Days:   anchor.AddMonths(months).DaysUntil(reference),
	}, true
}

// Format returns the phrase that replaces parsed in a narrative written on reference.
// Future dates always read "recently" so they carry no measurable distance.
func Format(parsed, reference calendar.Date) string {
	if parsed.After(reference) {
		return Recently
	}
	if parsed.Equal(reference) {
		return Today
	}

	s, _ := Elapsed(parsed, reference)
	return s.Phrase()
}

// Phrase renders the span. Years drop the day component; months and days are
// joined with "and".
func (s Span) Phrase() string {
	switch {
	case s.Years > 0 && s.Months == 0:
		return fmt.Sprintf("%s ago", unit(s.Years, "year"))
	case s.Years > 0:
		return fmt.Sprintf("%s %s ago", unit(s.Years, "year"), unit(s.Months, "month"))
	case s.Months > 0 && s.Days == 0:
		return fmt.Sprintf("%s ago", unit(s.Months, "month"))
	case s.Months > 0:
		return fmt.Sprintf("%s and %s ago", unit(s.Months, "month"), unit(s.Days, "day"))
	case s.Days == 0:
		return Today
	default:
		return fmt.Sprintf("%s ago", unit(s.Days, "day"))
	}
}

func unit(n int, name string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}
