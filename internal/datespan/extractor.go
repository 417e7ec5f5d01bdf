// Package datespan finds calendar-date mentions in free text.
//
// Four grammars are tried in a fixed precedence order (full textual date,
// month and year, numeric day-month-year, standalone year). A candidate from a
// lower-precedence grammar is discarded when it overlaps a span already
// claimed by a higher one. Spans that do not name a real calendar day still
// claim their text, and are dropped only after all four passes, so
// "30 February 2021" yields nothing rather than "February 2021". Extraction
// never fails.
package datespan

import (
	"sort"

	"date-deidentifier/internal/calendar"
)

// Match is one extracted date. Start and End are byte offsets into the
// scanned text (half-open), covering the date and any leading preposition.
type Match struct {
	Date  calendar.Date `json:"date"`
	Start int           `json:"start"`
	End   int           `json:"end"`
	Rule  Rule          `json:"rule"`
}

// Text returns the substring of text consumed by the match.
func (m Match) Text(text string) string {
	return text[m.Start:m.End]
}

func (m Match) overlaps(other Match) bool {
	return m.Start < other.End && other.Start < m.End
}

// Extract returns every date found in text, sorted by Start and pairwise
// non-overlapping.
func Extract(text string) []Match {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	offsets := byteOffsets(text, len(runes))

	var claimed []candidate
	for _, g := range grammars {
		for _, c := range g.candidates(runes, offsets) {
			if overlapsAny(claimed, c.Match) {
				continue
			}
			claimed = append(claimed, c)
		}
	}

	var accepted []Match
	for _, c := range claimed {
		if c.valid {
			accepted = append(accepted, c.Match)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// candidate is a grammar match. An invalid one names no real calendar day
// but still shadows lower-precedence grammars.
type candidate struct {
	Match
	valid bool
}

// candidates runs the grammar over the whole text. Matches rejected by the
// grammar's gate are skipped; the rest are returned with their validity.
func (g grammar) candidates(runes []rune, offsets []int) []candidate {
	var out []candidate

	m, err := g.re.FindRunesMatch(runes)
	for m != nil && err == nil {
		if g.gate == nil || g.gate(m) {
			d, ok := g.build(m)
			out = append(out, candidate{
				Match: Match{
					Date:  d,
					Start: offsets[m.Index],
					End:   offsets[m.Index+m.Length],
					Rule:  g.rule,
				},
				valid: ok,
			})
		}
		m, err = g.re.FindNextMatch(m)
	}
	// A timeout leaves the rest of the text unmatched for this grammar.
	return out
}

func overlapsAny(claimed []candidate, m Match) bool {
	for _, c := range claimed {
		if c.overlaps(m) {
			return true
		}
	}
	return false
}

// byteOffsets maps each rune index (and the end position) to its byte offset.
func byteOffsets(text string, runeCount int) []int {
	offsets := make([]int, 0, runeCount+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}
