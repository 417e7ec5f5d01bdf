package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	AppTitle  = "Date De-identification Tool"
	AppWidth  = 700
	AppHeight = 620
)

// App represents the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	wizard     *Wizard
	steps      *StepBuilder
}

// NewApp creates a new GUI application
func NewApp() *App {
	a := app.New()
	a.Settings().SetTheme(&darkTheme{})

	return &App{
		fyneApp: a,
	}
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow = a.fyneApp.NewWindow(AppTitle)
	a.mainWindow.Resize(fyne.NewSize(AppWidth, AppHeight))
	a.mainWindow.CenterOnScreen()

	// Create wizard
	a.wizard = NewWizard(a.mainWindow)

	// "Try a note" sits between the navigation buttons
	tryBtn := widget.NewButtonWithIcon("Try a note", theme.DocumentCreateIcon(), func() {
		showTryNoteDialog(a.mainWindow, a.steps.ReferenceText())
	})
	tryBtn.Importance = widget.LowImportance
	a.wizard.SetStatusIndicator(tryBtn)

	// Create step builder
	a.steps = NewStepBuilder(a.mainWindow, a.wizard)

	// Build step content
	a.wizard.SetStepContent(StepInput, a.steps.BuildStep1())
	a.wizard.SetStepContent(StepSettings, a.steps.BuildStep2())
	a.wizard.SetStepContent(StepPreview, a.steps.BuildStep3())
	a.wizard.SetStepContent(StepProcess, a.steps.BuildStep4())

	// Set validation callback
	a.wizard.SetCanProceed(func(step WizardStep) bool {
		switch step {
		case StepInput:
			return a.steps.ValidateStep1()
		case StepSettings:
			return a.steps.ValidateStep2()
		case StepPreview:
			return a.steps.DryRunComplete()
		case StepProcess:
			// On process step, "Done" closes the app
			if !a.steps.IsProcessing() {
				a.mainWindow.Close()
			}
			return false
		}
		return true
	})

	// Set step change callback
	a.wizard.SetOnStepChange(func(step WizardStep) {
		switch step {
		case StepPreview:
			// Auto-run dry run when entering preview step
			a.steps.RunDryRun()
		case StepProcess:
			// Auto-run processing when entering process step
			a.steps.RunProcess()
		}
	})

	// Build and set wizard UI
	content := a.wizard.Build()
	a.mainWindow.SetContent(content)

	// Confirm before closing if processing
	a.mainWindow.SetCloseIntercept(func() {
		if a.steps.IsProcessing() {
			dialog.ShowConfirm("Confirm Exit",
				"Processing is in progress. Are you sure you want to exit?",
				func(confirm bool) {
					if confirm {
						a.steps.Cancel()
						a.mainWindow.Close()
					}
				}, a.mainWindow)
		} else {
			a.mainWindow.Close()
		}
	})

	a.mainWindow.ShowAndRun()
}
