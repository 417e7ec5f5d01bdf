package datespan

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"

	"date-deidentifier/internal/calendar"
)

// Rule identifies one of the date grammars. Lower values take precedence.
type Rule int

const (
	RuleDayMonthYear Rule = iota // "3rd June 2021", "14-Nov-2024"
	RuleMonthYear                // "April 2022"
	RuleNumericDate              // "23-06-2020"
	RuleYear                     // "2019"
)

func (r Rule) String() string {
	switch r {
	case RuleDayMonthYear:
		return "day-month-year"
	case RuleMonthYear:
		return "month-year"
	case RuleNumericDate:
		return "numeric-date"
	case RuleYear:
		return "year"
	default:
		return "unknown"
	}
}

// MarshalText renders the rule name in JSON reports.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Standalone years outside this range are not treated as dates.
const (
	MinStandaloneYear = 2015
	MaxStandaloneYear = 2099
)

// monthNames maps case-folded month names and abbreviations to months.
var monthNames = map[string]time.Month{
	"january":   time.January,
	"jan":       time.January,
	"february":  time.February,
	"feb":       time.February,
	"march":     time.March,
	"mar":       time.March,
	"april":     time.April,
	"apr":       time.April,
	"may":       time.May,
	"june":      time.June,
	"jun":       time.June,
	"july":      time.July,
	"jul":       time.July,
	"august":    time.August,
	"aug":       time.August,
	"september": time.September,
	"sept":      time.September,
	"sep":       time.September,
	"october":   time.October,
	"oct":       time.October,
	"november":  time.November,
	"nov":       time.November,
	"december":  time.December,
	"dec":       time.December,
}

// MonthByName looks up a full or abbreviated English month name, ignoring case.
func MonthByName(name string) (time.Month, bool) {
	m, ok := monthNames[cases.Fold().String(name)]
	return m, ok
}

// Building blocks shared by the grammars. Offsets reported by regexp2 are rune
// indexes; Extract converts them to byte offsets.
const (
	dashClass   = `\-\u2010-\u2015`
	separator   = `[\s` + dashClass + `]`
	dash        = `[` + dashClass + `]`
	preposition = `(?:(?<prep>\b(?:on|in))\s+)?`
	yearDigits  = `(?<year>[0-9]{4})(?![0-9])`
)

// monthAlternation lists longer names first so "sept" is preferred over "sep".
func monthAlternation() string {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return `(?<month>` + strings.Join(names, "|") + `)`
}

// grammar is a compiled date pattern plus the conversion of its groups into a
// date. A match failing gate is not a candidate at all; one failing build is
// an invalid date that still claims its span.
type grammar struct {
	rule  Rule
	re    *regexp2.Regexp
	gate  func(m *regexp2.Match) bool
	build func(m *regexp2.Match) (calendar.Date, bool)
}

// grammars in precedence order.
var grammars = compileGrammars()

func compileGrammars() []grammar {
	month := monthAlternation()

	dayMonthYear := preposition +
		`\b(?<day>[0-9]{1,2})(?:st|nd|rd|th)?` + separator + month + separator + yearDigits
	monthYear := preposition + `\b` + month + separator + yearDigits
	numericDate := preposition +
		`(?<![0-9])(?<day>[0-9]{2})` + dash + `(?<month>[0-9]{2})` + dash + yearDigits
	standaloneYear := preposition + `\b(?<year>20(?:1[5-9]|[2-9][0-9]))\b`

	return []grammar{
		{rule: RuleDayMonthYear, re: compile(dayMonthYear), build: buildDayMonthYear},
		{rule: RuleMonthYear, re: compile(monthYear), build: buildMonthYear},
		{rule: RuleNumericDate, re: compile(numericDate), gate: numericMonth, build: buildNumericDate},
		{rule: RuleYear, re: compile(standaloneYear), build: buildYear},
	}
}

func compile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.IgnoreCase)
	re.MatchTimeout = matchTimeout
	return re
}

const matchTimeout = 2 * time.Second

func buildDayMonthYear(m *regexp2.Match) (calendar.Date, bool) {
	month, ok := MonthByName(group(m, "month"))
	if !ok {
		return calendar.Date{}, false
	}
	return newDate(group(m, "year"), month, group(m, "day"))
}

func buildMonthYear(m *regexp2.Match) (calendar.Date, bool) {
	month, ok := MonthByName(group(m, "month"))
	if !ok {
		return calendar.Date{}, false
	}
	return newDate(group(m, "year"), month, "1")
}

// numericMonth rejects "31-13-2021" outright, leaving "2021" to the year grammar.
func numericMonth(m *regexp2.Match) bool {
	month, err := strconv.Atoi(group(m, "month"))
	return err == nil && month >= 1 && month <= 12
}

func buildNumericDate(m *regexp2.Match) (calendar.Date, bool) {
	month, _ := strconv.Atoi(group(m, "month"))
	return newDate(group(m, "year"), time.Month(month), group(m, "day"))
}

func buildYear(m *regexp2.Match) (calendar.Date, bool) {
	year, err := strconv.Atoi(group(m, "year"))
	if err != nil || year < MinStandaloneYear || year > MaxStandaloneYear {
		return calendar.Date{}, false
	}
	return newDate(group(m, "year"), time.January, "1")
}

func newDate(yearText string, month time.Month, dayText string) (calendar.Date, bool) {
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return calendar.Date{}, false
	}
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return calendar.Date{}, false
	}
	d, err := calendar.New(year, month, day)
	if err != nil {
		return calendar.Date{}, false
	}
	return d, true
}

func group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil {
		return ""
	}
	return g.String()
}
