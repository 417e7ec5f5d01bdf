package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/rewriter"
)

const sampleNote = "Patient seen on 3rd June 2021 for chest pain. Echo 23-06-2021 was normal. Follow-up in April 2022, repeat imaging 2023."

// showTryNoteDialog lets the user paste a note and see how its dates are rewritten.
func showTryNoteDialog(window fyne.Window, reference string) {
	input := widget.NewMultiLineEntry()
	input.Wrapping = fyne.TextWrapWord
	input.SetPlaceHolder("Paste a note here")
	input.SetText(sampleNote)
	input.SetMinRowsVisible(5)

	refEntry := widget.NewEntry()
	refEntry.SetPlaceHolder(calendar.Layout)
	refEntry.SetText(reference)

	found := widget.NewRichText()
	found.Wrapping = fyne.TextWrapWord

	output := widget.NewRichText()
	output.Wrapping = fyne.TextWrapWord

	spans := widget.NewLabel("")
	spans.Wrapping = fyne.TextWrapWord
	spans.TextStyle = fyne.TextStyle{Monospace: true}

	status := canvas.NewText("", ColorTextSecondary)
	status.TextSize = 12

	update := func() {
		ref, err := calendar.Parse(strings.TrimSpace(refEntry.Text))
		if err != nil {
			status.Text = "Reference date must be YYYY-MM-DD"
			status.Color = ColorError
			status.Refresh()
			return
		}

		_, replacements, err := rewriter.RewriteWithReport(input.Text, ref)
		if err != nil {
			status.Text = err.Error()
			status.Color = ColorError
			status.Refresh()
			return
		}

		found.Segments = highlightDates(input.Text, replacements, false)
		found.Refresh()
		output.Segments = highlightDates(input.Text, replacements, true)
		output.Refresh()
		spans.SetText(describeReplacements(replacements))
		status.Text = fmt.Sprintf("%d date(s) rewritten relative to %s", len(replacements), ref)
		status.Color = ColorDateRelative
		status.Refresh()
	}
	input.OnChanged = func(string) { update() }
	refEntry.OnChanged = func(string) { update() }
	update()

	originalTitle := canvas.NewText("Dates found", ColorDateOriginal)
	originalTitle.TextStyle = fyne.TextStyle{Bold: true}

	content := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Reference date"), nil, refEntry),
		input,
		status,
		createCard("Original", found),
		createCard("De-identified", output),
		originalTitle,
		container.NewVScroll(spans),
	)

	d := dialog.NewCustom("Try a note", "Close", container.NewVScroll(content), window)
	d.Resize(fyne.NewSize(620, 560))
	d.Show()
}

// describeReplacements lists each span as: original -> phrase (rule, date).
func describeReplacements(replacements []rewriter.Replacement) string {
	if len(replacements) == 0 {
		return "No dates found"
	}
	lines := make([]string, len(replacements))
	for i, r := range replacements {
		lines[i] = fmt.Sprintf("%q -> %q  (%s, %s, bytes %d-%d)", r.Original, r.Phrase, r.Rule, r.Date, r.Start, r.End)
	}
	return strings.Join(lines, "\n")
}
