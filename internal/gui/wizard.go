package gui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"date-deidentifier/internal/calendar"
)

// WizardStep is one page of the de-identification flow.
type WizardStep int

const (
	StepInput WizardStep = iota
	StepSettings
	StepPreview
	StepProcess
)

var stepPages = [...]struct {
	title string
	next  string
}{
	StepInput:    {"Input", "Next"},
	StepSettings: {"Settings", "Next"},
	StepPreview:  {"Preview", "Rewrite dates"},
	StepProcess:  {"Rewrite", "Done"},
}

// stepMarker is the dot and caption for one step in the header.
type stepMarker struct {
	dot   *canvas.Circle
	title *canvas.Text
}

func newStepMarker(title string) *stepMarker {
	m := &stepMarker{
		dot:   canvas.NewCircle(ColorBorder),
		title: canvas.NewText(title, ColorTextSecondary),
	}
	m.dot.StrokeWidth = 2
	m.title.TextSize = 12
	m.title.Alignment = fyne.TextAlignCenter
	return m
}

func (m *stepMarker) object() fyne.CanvasObject {
	return container.NewVBox(
		container.NewCenter(container.NewGridWrap(fyne.NewSize(22, 22), m.dot)),
		m.title,
	)
}

// paint colors the marker by its position relative to the current step:
// done steps take the relative-date color, the current one the accent.
func (m *stepMarker) paint(step, current WizardStep) {
	fill, text := color.Color(ColorBorder), color.Color(ColorTextSecondary)
	switch {
	case step < current:
		fill, text = ColorDateRelative, ColorTextPrimary
	case step == current:
		fill, text = ColorPrimaryAccent, ColorTextPrimary
	}
	m.dot.FillColor, m.dot.StrokeColor = fill, fill
	m.title.Color = text
	m.dot.Refresh()
	m.title.Refresh()
}

// Wizard holds the four pages, the navigation buttons and a status line
// showing the reference date and how many dates the last run found.
type Wizard struct {
	window  fyne.Window
	current WizardStep
	pages   map[WizardStep]fyne.CanvasObject
	markers []*stepMarker

	back   *widget.Button
	next   *widget.Button
	body   *fyne.Container
	status *canvas.Text
	extra  fyne.CanvasObject

	reference calendar.Date
	spans     int

	onStepChange func(WizardStep)
	canProceed   func(WizardStep) bool
}

// NewWizard creates a wizard on the input step with no reference date set.
func NewWizard(window fyne.Window) *Wizard {
	w := &Wizard{
		window: window,
		pages:  make(map[WizardStep]fyne.CanvasObject),
		spans:  -1,
		status: canvas.NewText("", ColorTextSecondary),
	}
	w.status.TextSize = 12

	w.back = widget.NewButton("Back", w.Previous)
	w.next = widget.NewButton("Next", w.Next)
	w.next.Importance = widget.HighImportance

	for _, p := range stepPages {
		w.markers = append(w.markers, newStepMarker(p.title))
	}
	w.refresh()
	return w
}

// SetStepContent sets the content for a specific step
func (w *Wizard) SetStepContent(step WizardStep, content fyne.CanvasObject) {
	w.pages[step] = content
}

// SetOnStepChange sets the callback for when the step changes
func (w *Wizard) SetOnStepChange(callback func(WizardStep)) {
	w.onStepChange = callback
}

// SetCanProceed sets the validation callback for step transitions
func (w *Wizard) SetCanProceed(callback func(WizardStep) bool) {
	w.canProceed = callback
}

// SetStatusIndicator sets an optional widget shown between the navigation buttons
func (w *Wizard) SetStatusIndicator(indicator fyne.CanvasObject) {
	w.extra = indicator
}

// SetReference records the reference date typed on the input step. Next
// stays disabled on that step until the text is a valid YYYY-MM-DD date.
func (w *Wizard) SetReference(text string) bool {
	ref, err := calendar.Parse(text)
	if err != nil {
		w.reference = calendar.Date{}
	} else {
		w.reference = ref
	}
	w.spans = -1
	w.refresh()
	return err == nil
}

// SetSpanCount shows how many dates the last run found; negative clears it.
func (w *Wizard) SetSpanCount(n int) {
	w.spans = n
	w.refreshStatus()
}

// Next moves to the next step
func (w *Wizard) Next() {
	if w.canProceed != nil && !w.canProceed(w.current) {
		return
	}
	if w.current < StepProcess {
		w.GoToStep(w.current + 1)
	}
}

// Previous moves to the previous step
func (w *Wizard) Previous() {
	if w.current > StepInput {
		w.GoToStep(w.current - 1)
	}
}

// GoToStep navigates to a specific step
func (w *Wizard) GoToStep(step WizardStep) {
	if step < StepInput || step > StepProcess {
		return
	}

	w.current = step
	w.refresh()
	w.showPage()

	if w.onStepChange != nil {
		w.onStepChange(step)
	}
}

// SetNextEnabled enables or disables the next button
func (w *Wizard) SetNextEnabled(enabled bool) {
	if enabled {
		w.next.Enable()
	} else {
		w.next.Disable()
	}
}

// SetNextText sets the text of the next button
func (w *Wizard) SetNextText(text string) {
	w.next.SetText(text)
}

// SetBackEnabled enables or disables the back button
func (w *Wizard) SetBackEnabled(enabled bool) {
	if enabled && w.current > StepInput {
		w.back.Enable()
	} else {
		w.back.Disable()
	}
}

func (w *Wizard) refresh() {
	for i, m := range w.markers {
		m.paint(WizardStep(i), w.current)
	}

	w.SetBackEnabled(true)
	w.next.SetText(stepPages[w.current].next)
	switch w.current {
	case StepInput:
		w.SetNextEnabled(w.reference.IsValid())
	case StepProcess:
		// enabled by the process step once the batch ends
		w.SetNextEnabled(false)
	default:
		w.SetNextEnabled(true)
	}
	w.refreshStatus()
}

func (w *Wizard) refreshStatus() {
	switch {
	case !w.reference.IsValid():
		w.status.Text = "No reference date"
		w.status.Color = ColorError
	case w.spans >= 0:
		w.status.Text = fmt.Sprintf("Reference %s (%s), %d date(s) found", w.reference, w.reference.Weekday(), w.spans)
		w.status.Color = ColorDateRelative
	default:
		w.status.Text = fmt.Sprintf("Reference %s (%s)", w.reference, w.reference.Weekday())
		w.status.Color = ColorTextSecondary
	}
	w.status.Refresh()
}

func (w *Wizard) showPage() {
	if w.body == nil {
		return
	}
	w.body.Objects = nil
	if page, ok := w.pages[w.current]; ok {
		w.body.Objects = []fyne.CanvasObject{page}
	}
	w.body.Refresh()
}

// Build creates the complete wizard UI
func (w *Wizard) Build() fyne.CanvasObject {
	w.body = container.NewStack()
	w.showPage()

	var steps []fyne.CanvasObject
	for i, m := range w.markers {
		if i > 0 {
			line := canvas.NewRectangle(ColorBorder)
			line.SetMinSize(fyne.NewSize(36, 2))
			steps = append(steps, container.NewVBox(container.NewGridWrap(fyne.NewSize(36, 10)), line))
		}
		steps = append(steps, m.object())
	}

	rule := canvas.NewRectangle(ColorBorder)
	rule.SetMinSize(fyne.NewSize(0, 1))

	header := container.NewVBox(
		container.NewPadded(container.NewCenter(container.NewHBox(steps...))),
		container.NewCenter(w.status),
		rule,
	)

	var middle fyne.CanvasObject = widget.NewLabel("")
	if w.extra != nil {
		middle = container.NewCenter(w.extra)
	}
	nav := container.NewBorder(nil, nil, w.back, w.next, middle)

	return container.NewBorder(
		header,
		container.NewPadded(nav),
		nil, nil,
		container.NewPadded(createCard("", w.body)),
	)
}

// createCard creates a styled card container
func createCard(title string, content fyne.CanvasObject) fyne.CanvasObject {
	bg := canvas.NewRectangle(ColorCardBackground)
	bg.CornerRadius = 8

	var header fyne.CanvasObject
	if title != "" {
		label := canvas.NewText(title, ColorTextPrimary)
		label.TextSize = 16
		label.TextStyle = fyne.TextStyle{Bold: true}
		header = label
	}

	return container.NewStack(
		bg,
		container.NewPadded(container.NewBorder(header, nil, nil, nil, content)),
	)
}
