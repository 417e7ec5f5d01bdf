// Package rewriter replaces absolute dates in narrative text with phrases
// relative to a reference date.
package rewriter

import (
	"errors"
	"fmt"
	"strings"

	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/datespan"
	"date-deidentifier/internal/relative"
)

// ErrInvalidReference is returned when the reference date is not a real calendar day.
var ErrInvalidReference = errors.New("invalid reference date")

// Replacement records one substitution made in a text.
type Replacement struct {
	datespan.Match
	Original string `json:"original"`
	Phrase   string `json:"phrase"`
}

// Rewrite returns text with every extracted date replaced by its relative
// phrase. Text outside the matched spans is preserved byte for byte.
func Rewrite(text string, reference calendar.Date) (string, error) {
	out, _, err := RewriteWithReport(text, reference)
	return out, err
}

// RewriteWithReport is like Rewrite and also returns the replacements in
// document order.
func RewriteWithReport(text string, reference calendar.Date) (string, []Replacement, error) {
	if !reference.IsValid() {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidReference, reference)
	}

	matches := datespan.Extract(text)
	if len(matches) == 0 {
		return text, nil, nil
	}

	replacements := make([]Replacement, len(matches))
	for i, m := range matches {
		replacements[i] = Replacement{
			Match:    m,
			Original: m.Text(text),
			Phrase:   relative.Format(m.Date, reference),
		}
	}

	// Assemble from the end so offsets of earlier spans stay valid.
	pieces := make([]string, 0, 2*len(replacements)+1)
	tail := len(text)
	for i := len(replacements) - 1; i >= 0; i-- {
		r := replacements[i]
		pieces = append(pieces, text[r.End:tail], r.Phrase)
		tail = r.Start
	}
	pieces = append(pieces, text[:tail])

	var b strings.Builder
	b.Grow(len(text))
	for i := len(pieces) - 1; i >= 0; i-- {
		b.WriteString(pieces[i])
	}
	return b.String(), replacements, nil
}
