package gui

import (
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/rewriter"
)

func joinSegments(segs []widget.RichTextSegment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Textual())
	}
	return b.String()
}

func TestHighlightDates(t *testing.T) {
	text := "Seen on 3 June 2021 and 14-Nov-2024."
	out, reps, err := rewriter.RewriteWithReport(text, calendar.MustNew(2024, time.October, 29))
	require.NoError(t, err)

	rewritten := highlightDates(text, reps, true)
	assert.Equal(t, out, joinSegments(rewritten))
	require.Len(t, rewritten, 5)
	assert.Equal(t, "3 years 4 months ago", rewritten[1].Textual())
	assert.Equal(t, colorNameDateRelative, rewritten[1].(*widget.TextSegment).Style.ColorName)
	assert.Equal(t, theme.ColorNameForeground, rewritten[0].(*widget.TextSegment).Style.ColorName)

	original := highlightDates(text, reps, false)
	assert.Equal(t, text, joinSegments(original))
	assert.Equal(t, "on 3 June 2021", original[1].Textual())
	assert.Equal(t, colorNameDateOriginal, original[1].(*widget.TextSegment).Style.ColorName)

	assert.Empty(t, highlightDates("", nil, true))
	assert.Equal(t, "No dates", joinSegments(highlightDates("No dates", nil, false)))
}

func TestDarkThemeDateColors(t *testing.T) {
	th := darkTheme{}
	assert.Equal(t, ColorDateOriginal, th.Color(colorNameDateOriginal, theme.VariantDark))
	assert.Equal(t, ColorDateRelative, th.Color(colorNameDateRelative, theme.VariantLight))
	assert.Equal(t, float32(15), th.Size(theme.SizeNameText))
}

func TestWizardReferenceGatesNext(t *testing.T) {
	test.NewApp()
	w := NewWizard(test.NewWindow(nil))

	assert.True(t, w.next.Disabled())
	assert.Equal(t, "No reference date", w.status.Text)

	assert.False(t, w.SetReference("2024-02-30"))
	assert.True(t, w.next.Disabled())

	assert.True(t, w.SetReference("2024-10-29"))
	assert.False(t, w.next.Disabled())
	assert.Equal(t, "Reference 2024-10-29 (Tuesday)", w.status.Text)

	w.GoToStep(StepPreview)
	assert.Equal(t, "Rewrite dates", w.next.Text)
	assert.False(t, w.back.Disabled())

	w.SetSpanCount(3)
	assert.Equal(t, "Reference 2024-10-29 (Tuesday), 3 date(s) found", w.status.Text)

	w.GoToStep(StepProcess)
	assert.True(t, w.next.Disabled())
}

func TestSampleSegments(t *testing.T) {
	_, reps, err := rewriter.RewriteWithReport("in April 2022", calendar.MustNew(2024, time.October, 29))
	require.NoError(t, err)
	require.Len(t, reps, 1)

	segs := sampleSegments(reps[0])
	assert.Equal(t, "    in April 2022  ->  2 years 6 months ago", joinSegments(segs))
	assert.False(t, segs[len(segs)-1].Inline(), "each sample ends its line")
}
