package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		y       int
		m       time.Month
		d       int
		wantErr bool
	}{
		{"ordinary day", 2024, time.October, 29, false},
		{"leap day in leap year", 2024, time.February, 29, false},
		{"leap day in century leap year", 2000, time.February, 29, false},
		{"leap day in common year", 2023, time.February, 29, true},
		{"leap day in century common year", 1900, time.February, 29, true},
		{"february 30", 2024, time.February, 30, true},
		{"april 31", 2021, time.April, 31, true},
		{"december 31", 2021, time.December, 31, false},
		{"day zero", 2021, time.January, 0, true},
		{"month zero", 2021, 0, 1, true},
		{"month thirteen", 2021, 13, 1, true},
		{"year zero", 0, time.January, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.y, tt.m, tt.d)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDate)
				assert.False(t, d.IsValid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.y, d.Year())
			assert.Equal(t, tt.m, d.Month())
			assert.Equal(t, tt.d, d.Day())
			assert.True(t, d.IsValid())
		})
	}
}

func TestZeroValueIsInvalid(t *testing.T) {
	assert.False(t, Date{}.IsValid())
}

func TestParse(t *testing.T) {
	d, err := Parse("2024-10-29")
	require.NoError(t, err)
	assert.Equal(t, MustNew(2024, time.October, 29), d)

	for _, bad := range []string{"", "2024-13-01", "2023-02-29", "29/10/2024", "0000-01-01"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, "Parse(%q)", bad)
	}
}

func TestCompare(t *testing.T) {
	a := MustNew(2021, time.June, 3)
	b := MustNew(2024, time.October, 29)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(MustNew(2021, time.June, 3)))
	assert.True(t, MustNew(2024, time.January, 31).Before(MustNew(2024, time.February, 1)))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want Date
	}{
		{MustNew(2024, time.January, 31), 1, MustNew(2024, time.February, 29)},
		{MustNew(2023, time.January, 31), 1, MustNew(2023, time.February, 28)},
		{MustNew(2024, time.March, 31), 1, MustNew(2024, time.April, 30)},
		{MustNew(2024, time.November, 15), 2, MustNew(2025, time.January, 15)},
		{MustNew(2024, time.December, 31), 12, MustNew(2025, time.December, 31)},
		{MustNew(2024, time.March, 15), -3, MustNew(2023, time.December, 15)},
		{MustNew(2024, time.June, 3), 0, MustNew(2024, time.June, 3)},
	}

	for _, tt := range tests {
		got := tt.from.AddMonths(tt.n)
		assert.Equal(t, tt.want, got, "%s + %d months", tt.from, tt.n)
		assert.True(t, got.IsValid())
	}
}

func TestAddYears(t *testing.T) {
	leap := MustNew(2020, time.February, 29)
	assert.Equal(t, MustNew(2021, time.February, 28), leap.AddYears(1))
	assert.Equal(t, MustNew(2024, time.February, 29), leap.AddYears(4))
	assert.Equal(t, MustNew(2024, time.June, 3), MustNew(2021, time.June, 3).AddYears(3))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 0, MustNew(2024, time.October, 29).DaysUntil(MustNew(2024, time.October, 29)))
	assert.Equal(t, 1, MustNew(2024, time.October, 28).DaysUntil(MustNew(2024, time.October, 29)))
	assert.Equal(t, 29, MustNew(2024, time.February, 1).DaysUntil(MustNew(2024, time.March, 1)))
	assert.Equal(t, 366, MustNew(2024, time.January, 1).DaysUntil(MustNew(2025, time.January, 1)))
	assert.Equal(t, -1, MustNew(2024, time.October, 29).DaysUntil(MustNew(2024, time.October, 28)))

	// Spans longer than a time.Duration can hold.
	assert.Equal(t, 154863, MustNew(1600, time.January, 1).DaysUntil(MustNew(2024, time.January, 1)))
	assert.Equal(t, 3652058, MustNew(1, time.January, 1).DaysUntil(MustNew(9999, time.December, 31)))
	assert.Equal(t, -3652058, MustNew(9999, time.December, 31).DaysUntil(MustNew(1, time.January, 1)))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, time.Tuesday, MustNew(2024, time.October, 29).Weekday())
	assert.Equal(t, time.Tuesday, MustNew(2000, time.February, 29).Weekday())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(time.February, 2024))
	assert.Equal(t, 28, DaysIn(time.February, 2100))
	assert.Equal(t, 29, DaysIn(time.February, 2000))
	assert.Equal(t, 30, DaysIn(time.September, 2021))
	assert.Equal(t, 31, DaysIn(time.August, 2021))
}

func TestTextMarshaling(t *testing.T) {
	type doc struct {
		Reference Date `json:"reference"`
	}

	data, err := json.Marshal(doc{Reference: MustNew(2024, time.October, 29)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reference":"2024-10-29"}`, string(data))

	var back doc
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, MustNew(2024, time.October, 29), back.Reference)

	assert.Error(t, json.Unmarshal([]byte(`{"reference":"2024-02-30"}`), &back))
}
