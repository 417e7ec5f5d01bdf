package rewriter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/datespan"
)

var reference = calendar.MustNew(2024, time.October, 29)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full date", "on 3 June 2021", "3 years 4 months ago"},
		{"future date", "14‑Nov‑2024", "recently"},
		{"month year consumes preposition", "Published in April 2022 edition.", "Published 2 years 6 months ago edition."},
		{"numeric date", "23‑06‑2020", "4 years 4 months ago"},
		{"years out of range untouched", "Born in 2010 and 2014.", "Born in 2010 and 2014."},
		{"reference day", "Seen on 29 October 2024.", "Seen today."},
		{"yesterday", "Seen 28-10-2024.", "Seen 1 day ago."},
		{
			"several dates",
			"Admitted on 01-01-2020 and discharged 31-12-2021; reviewed in 2023.",
			"Admitted 4 years 9 months ago and discharged 2 years 9 months ago; reviewed 1 year 9 months ago.",
		},
		{"invalid full date untouched", "seen 30 February 2021", "seen 30 February 2021"},
		{"invalid numeric date untouched", "admitted 31-04-2022", "admitted 31-04-2022"},
		{"no dates", "Patient is stable.", "Patient is stable."},
		{"empty", "", ""},
		{"multibyte context", "Échographie — le 3 June 2021 ✓", "Échographie — le 3 years 4 months ago ✓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rewrite(tt.in, reference)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	inputs := []string{
		"Surgery on 3 June 2021; follow-up June 2022; labs 01-01-2020; MRI 2023.",
		"14‑Nov‑2024 and 2nd Feb 2019 then in 2016",
		"Published in April 2022 edition.",
	}

	for _, in := range inputs {
		once, err := Rewrite(in, reference)
		require.NoError(t, err)
		assert.Empty(t, datespan.Extract(once), "dates left in %q", once)

		twice, err := Rewrite(once, reference)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestRewriteWithReport(t *testing.T) {
	text := "Seen on 3 June 2021 and 14-Nov-2024."
	out, reps, err := RewriteWithReport(text, reference)
	require.NoError(t, err)
	assert.Equal(t, "Seen 3 years 4 months ago and recently.", out)

	require.Len(t, reps, 2)
	assert.Equal(t, "on 3 June 2021", reps[0].Original)
	assert.Equal(t, "3 years 4 months ago", reps[0].Phrase)
	assert.Equal(t, datespan.RuleDayMonthYear, reps[0].Rule)
	assert.Equal(t, "14-Nov-2024", reps[1].Original)
	assert.Equal(t, "recently", reps[1].Phrase)
	assert.Less(t, reps[0].Start, reps[1].Start)
}

func TestRewriteInvalidReference(t *testing.T) {
	_, err := Rewrite("on 3 June 2021", calendar.Date{})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, _, err = RewriteWithReport("", calendar.Date{})
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestRewriteConcurrent(t *testing.T) {
	texts := []string{
		"on 3 June 2021",
		"Published in April 2022 edition.",
		"23‑06‑2020",
		"01-01-2020 and 31-12-2021",
	}
	want := make([]string, len(texts))
	for i, text := range texts {
		out, err := Rewrite(text, reference)
		require.NoError(t, err)
		want[i] = out
	}

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		for i, text := range texts {
			wg.Add(1)
			go func(i int, text string) {
				defer wg.Done()
				out, err := Rewrite(text, reference)
				assert.NoError(t, err)
				assert.Equal(t, want[i], out)
			}(i, text)
		}
	}
	wg.Wait()
}
