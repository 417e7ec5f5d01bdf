package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a year/month/day combination does not exist.
var ErrInvalidDate = errors.New("invalid calendar date")

// Layout is the textual form of a Date (ISO 8601 calendar date).
const Layout = "2006-01-02"

// Date is a proleptic Gregorian calendar date without time or location.
// The zero value is not a valid date.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New returns the date for the given year, month and day.
// It fails instead of normalizing (New(2023, 2, 29) is an error, not March 1).
func New(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 {
		return Date{}, fmt.Errorf("%w: year %d out of range", ErrInvalidDate, year)
	}
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: month %d out of range", ErrInvalidDate, int(month))
	}
	if day < 1 || day > DaysIn(month, year) {
		return Date{}, fmt.Errorf("%w: %04d-%02d has no day %d", ErrInvalidDate, year, int(month), day)
	}
	return Date{year: year, month: month, day: day}, nil
}

// MustNew is like New but panics on an invalid date. Intended for tests and constants.
func MustNew(year int, month time.Month, day int) Date {
	d, err := New(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse parses a date in YYYY-MM-DD form.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, s)
	}
	return New(t.Year(), t.Month(), t.Day())
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return FromTime(time.Now().In(loc))
}

// Year returns the year.
func (d Date) Year() int { return d.year }

// Month returns the month.
func (d Date) Month() time.Month { return d.month }

// Day returns the day of the month.
func (d Date) Day() int { return d.day }

// IsValid reports whether d names an existing calendar day.
func (d Date) IsValid() bool {
	_, err := New(d.year, d.month, d.day)
	return err == nil
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return sign(d.year - other.year)
	case d.month != other.month:
		return sign(int(d.month) - int(other.month))
	default:
		return sign(d.day - other.day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool { return d == other }

// AddYears returns d shifted by n years. Feb 29 maps to Feb 28 in common years.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(12 * n)
}

// AddMonths returns d shifted by n calendar months, clamping the day to the
// last day of the target month when it does not exist there.
func (d Date) AddMonths(n int) Date {
	total := d.year*12 + int(d.month-1) + n
	year, month := total/12, time.Month(total%12+1)
	day := d.day
	if last := DaysIn(month, year); day > last {
		day = last
	}
	return Date{year: year, month: month, day: day}
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the number of days from d to other (negative if other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int((other.time().Unix() - d.time().Unix()) / secondsPerDay)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("%w: cannot marshal %s", ErrInvalidDate, d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in month of year.
func DaysIn(month time.Month, year int) int {
	switch month {
	case time.February:
		if IsLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
