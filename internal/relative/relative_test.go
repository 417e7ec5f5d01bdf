package relative

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"date-deidentifier/internal/calendar"
)

var reference = calendar.MustNew(2024, time.October, 29)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		parsed calendar.Date
		ref    calendar.Date
		want   string
	}{
		{"same day", reference, reference, "today"},
		{"future day", calendar.MustNew(2024, time.November, 14), reference, "recently"},
		{"far future", calendar.MustNew(2099, time.January, 1), reference, "recently"},
		{"one day", calendar.MustNew(2024, time.October, 28), reference, "1 day ago"},
		{"several days", calendar.MustNew(2024, time.October, 10), reference, "19 days ago"},
		{"one month exactly", calendar.MustNew(2024, time.September, 29), reference, "1 month ago"},
		{"one month and one day", calendar.MustNew(2024, time.September, 28), reference, "1 month and 1 day ago"},
		{"months and days", calendar.MustNew(2024, time.July, 1), reference, "3 months and 28 days ago"},
		{"twelve months is a year", calendar.MustNew(2023, time.October, 29), reference, "1 year ago"},
		{"year ignores days", calendar.MustNew(2023, time.October, 2), reference, "1 year ago"},
		{"years and one month", calendar.MustNew(2022, time.September, 1), reference, "2 years 1 month ago"},
		{"full date scenario", calendar.MustNew(2021, time.June, 3), reference, "3 years 4 months ago"},
		{"month year scenario", calendar.MustNew(2022, time.April, 1), reference, "2 years 6 months ago"},
		{"numeric scenario", calendar.MustNew(2020, time.June, 23), reference, "4 years 4 months ago"},
		{"standalone year", calendar.MustNew(2019, time.January, 1), reference, "5 years 9 months ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.parsed, tt.ref))
		})
	}
}

func TestElapsedCalendarAware(t *testing.T) {
	tests := []struct {
		name   string
		parsed calendar.Date
		ref    calendar.Date
		want   Span
	}{
		{
			"leap day anchor before anniversary",
			calendar.MustNew(2020, time.February, 29),
			calendar.MustNew(2021, time.February, 27),
			Span{Years: 0, Months: 11, Days: 29},
		},
		{
			"leap day anchor on clamped anniversary",
			calendar.MustNew(2020, time.February, 29),
			calendar.MustNew(2021, time.February, 28),
			Span{Years: 1, Months: 0, Days: 0},
		},
		{
			"month end clamps into february",
			calendar.MustNew(2024, time.January, 31),
			calendar.MustNew(2024, time.February, 29),
			Span{Years: 0, Months: 1, Days: 0},
		},
		{
			"month end not yet reached in common february",
			calendar.MustNew(2023, time.January, 31),
			calendar.MustNew(2023, time.February, 27),
			Span{Years: 0, Months: 0, Days: 27},
		},
		{
			"days across leap february",
			calendar.MustNew(2024, time.February, 15),
			calendar.MustNew(2024, time.March, 14),
			Span{Years: 0, Months: 0, Days: 28},
		},
		{
			"scenario decomposition",
			calendar.MustNew(2021, time.June, 3),
			reference,
			Span{Years: 3, Months: 4, Days: 26},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Elapsed(tt.parsed, tt.ref)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElapsedFuture(t *testing.T) {
	_, ok := Elapsed(calendar.MustNew(2024, time.October, 30), reference)
	assert.False(t, ok)
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		span Span
		want string
	}{
		{Span{Years: 1}, "1 year ago"},
		{Span{Years: 2, Days: 5}, "2 years ago"},
		{Span{Years: 1, Months: 1}, "1 year 1 month ago"},
		{Span{Years: 3, Months: 11, Days: 30}, "3 years 11 months ago"},
		{Span{Months: 1}, "1 month ago"},
		{Span{Months: 2, Days: 1}, "2 months and 1 day ago"},
		{Span{Months: 1, Days: 2}, "1 month and 2 days ago"},
		{Span{}, "today"},
		{Span{Days: 1}, "1 day ago"},
		{Span{Days: 30}, "30 days ago"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.span.Phrase(), "%+v", tt.span)
	}
}

func TestFormatShapes(t *testing.T) {
	start := calendar.MustNew(2015, time.January, 1)
	for d := start; !d.After(reference.AddMonths(3)); d = d.AddMonths(1) {
		phrase := Format(d, reference)
		if phrase == Today || phrase == Recently {
			continue
		}
		assert.True(t, strings.HasSuffix(phrase, " ago"), "%s -> %q", d, phrase)
	}
}
