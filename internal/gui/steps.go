package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"date-deidentifier/internal/anonymizer"
	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/rewriter"
	"date-deidentifier/internal/scan"
)

// previewSamples is the number of replacements listed per file in the preview.
const previewSamples = 3

// StepBuilder handles creating UI content for each wizard step
type StepBuilder struct {
	window fyne.Window
	wizard *Wizard

	// Step 1: Input fields
	inputFolderEntry *widget.Entry
	fileCountLabel   *widget.Label
	referenceEntry   *widget.Entry
	referenceHint    *widget.Label

	// Step 2: Settings fields
	notesCheck        *widget.Check
	dicomCheck        *widget.Check
	refFromStudyCheck *widget.Check
	recursiveCheck    *widget.Check
	retryFailedCheck  *widget.Check
	outputFolderEntry *widget.Entry
	reportFileEntry   *widget.Entry

	// Step 3: Preview
	previewProgress *widget.ProgressBar
	previewStatus   *widget.Label
	previewSummary  *widget.Label
	previewFiles    *widget.RichText
	dryRunComplete  bool

	// Step 4: Process
	processProgress    *widget.ProgressBar
	processStatus      *widget.Label
	processFileCount   *widget.Label
	processCurrentFile *widget.Label
	processStats       *widget.Label
	processSummary     *widget.Label
	processing         bool
	cancel             context.CancelFunc
	processingMu       sync.Mutex
}

// NewStepBuilder creates a new step builder
func NewStepBuilder(window fyne.Window, wizard *Wizard) *StepBuilder {
	return &StepBuilder{
		window: window,
		wizard: wizard,
	}
}

func stepTitle(text string) *canvas.Text {
	title := canvas.NewText(text, ColorTextPrimary)
	title.TextSize = 18
	title.TextStyle = fyne.TextStyle{Bold: true}
	return title
}

func sectionLabel(text string) *widget.Label {
	return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
}

// BuildStep1 creates the Input step content
func (s *StepBuilder) BuildStep1() fyne.CanvasObject {
	// Input folder
	s.inputFolderEntry = widget.NewEntry()
	s.inputFolderEntry.SetPlaceHolder("/path/to/notes")
	s.inputFolderEntry.OnChanged = func(text string) {
		s.updateFileCount()
		s.autoSetOutputFolder()
	}

	inputBrowseBtn := widget.NewButton("Browse", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			s.inputFolderEntry.SetText(uri.Path())
		}, s.window)
	})

	inputRow := container.NewBorder(nil, nil, nil, inputBrowseBtn, s.inputFolderEntry)

	// File count indicator
	s.fileCountLabel = widget.NewLabel("")
	s.fileCountLabel.Wrapping = fyne.TextWrapWord

	// Reference date
	s.referenceHint = widget.NewLabel("")
	s.referenceHint.Wrapping = fyne.TextWrapWord

	s.referenceEntry = widget.NewEntry()
	s.referenceEntry.SetPlaceHolder(calendar.Layout)
	s.referenceEntry.OnChanged = func(text string) {
		s.updateReferenceHint()
	}
	s.referenceEntry.SetText(calendar.Today(time.Local).String())

	todayBtn := widget.NewButton("Today", func() {
		s.referenceEntry.SetText(calendar.Today(time.Local).String())
	})
	referenceRow := container.NewBorder(nil, nil, nil, todayBtn, s.referenceEntry)

	referenceCard := createCard("Reference Date", container.NewVBox(
		widget.NewLabel("Every date is rewritten relative to this day, e.g. \"3 years 4 months ago\""),
		referenceRow,
		s.referenceHint,
	))

	// Build form
	content := container.NewVBox(
		stepTitle("Select Input"),
		widget.NewSeparator(),
		container.NewVBox(
			sectionLabel("Input Folder Path"),
			inputRow,
			s.fileCountLabel,
		),
		widget.NewSeparator(),
		referenceCard,
	)

	return container.NewPadded(content)
}

// BuildStep2 creates the Settings step content
func (s *StepBuilder) BuildStep2() fyne.CanvasObject {
	// Document types
	s.notesCheck = widget.NewCheck("Narrative notes (.txt, .md, .note)", nil)
	s.notesCheck.SetChecked(true)

	s.refFromStudyCheck = widget.NewCheck("Use each study's StudyDate as its reference", nil)

	s.dicomCheck = widget.NewCheck("DICOM free-text fields", func(checked bool) {
		if checked {
			s.refFromStudyCheck.Enable()
		} else {
			s.refFromStudyCheck.SetChecked(false)
			s.refFromStudyCheck.Disable()
		}
	})
	s.dicomCheck.SetChecked(true)

	// Recursive check
	s.recursiveCheck = widget.NewCheck("Search subdirectories", nil)
	s.recursiveCheck.SetChecked(true)

	// Retry failed check
	s.retryFailedCheck = widget.NewCheck("Retry failed files", nil)

	// Output folder (auto-set)
	s.outputFolderEntry = widget.NewEntry()
	s.outputFolderEntry.SetPlaceHolder("Auto-set inside the input folder")

	outputBrowseBtn := widget.NewButton("Browse", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			s.outputFolderEntry.SetText(uri.Path())
		}, s.window)
	})
	outputRow := container.NewBorder(nil, nil, nil, outputBrowseBtn, s.outputFolderEntry)

	// Optional JSON report
	s.reportFileEntry = widget.NewEntry()
	s.reportFileEntry.SetPlaceHolder("Optional: report.json listing every replacement")

	reportBrowseBtn := widget.NewButton("Browse", func() {
		dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			s.reportFileEntry.SetText(writer.URI().Path())
			writer.Close()
		}, s.window)
	})
	reportRow := container.NewBorder(nil, nil, nil, reportBrowseBtn, s.reportFileEntry)

	// Build form
	content := container.NewVBox(
		stepTitle("Configure Settings"),
		widget.NewSeparator(),
		container.NewVBox(
			sectionLabel("Documents"),
			container.NewHBox(s.notesCheck, s.dicomCheck),
			s.refFromStudyCheck,
		),
		widget.NewSeparator(),
		container.NewVBox(
			sectionLabel("Options"),
			container.NewHBox(s.recursiveCheck, s.retryFailedCheck),
		),
		widget.NewSeparator(),
		container.NewVBox(
			sectionLabel("Output Folder"),
			widget.NewLabel("Source files are never modified"),
			outputRow,
		),
		container.NewVBox(
			sectionLabel("Report"),
			reportRow,
		),
	)

	return container.NewPadded(content)
}

// BuildStep3 creates the Preview step content
func (s *StepBuilder) BuildStep3() fyne.CanvasObject {
	// Progress
	s.previewProgress = widget.NewProgressBar()
	s.previewProgress.SetValue(0)

	s.previewStatus = widget.NewLabel("Scanning files...")

	// Results
	s.previewSummary = widget.NewLabel("")
	s.previewSummary.Wrapping = fyne.TextWrapWord

	s.previewFiles = widget.NewRichText()
	s.previewFiles.Wrapping = fyne.TextWrapWord

	// Scrollable container for preview results
	previewScroll := container.NewVScroll(s.previewFiles)
	previewScroll.SetMinSize(fyne.NewSize(0, 200))

	header := container.NewVBox(
		stepTitle("Preview (Dry Run)"),
		widget.NewSeparator(),
		s.previewProgress,
		s.previewStatus,
		widget.NewSeparator(),
		s.previewSummary,
		widget.NewSeparator(),
	)

	// Use border layout to make scroll expand
	return container.NewBorder(
		container.NewPadded(header),
		nil, nil, nil,
		container.NewPadded(previewScroll), // fills remaining space
	)
}

// BuildStep4 creates the Process step content
func (s *StepBuilder) BuildStep4() fyne.CanvasObject {
	// Progress
	s.processProgress = widget.NewProgressBar()
	s.processProgress.SetValue(0)

	s.processStatus = widget.NewLabel("Ready to process")
	s.processFileCount = widget.NewLabel("")
	s.processCurrentFile = widget.NewLabel("")
	s.processCurrentFile.Wrapping = fyne.TextWrapWord

	s.processStats = widget.NewLabel("")
	s.processSummary = widget.NewLabel("")
	s.processSummary.Wrapping = fyne.TextWrapWord

	// Fixed header content (progress area)
	headerContent := container.NewVBox(
		stepTitle("Processing"),
		widget.NewSeparator(),
		s.processProgress,
		s.processStatus,
		s.processFileCount,
		s.processCurrentFile,
		widget.NewSeparator(),
	)

	// Scrollable content (stats and summary that can grow)
	processScroll := container.NewVScroll(container.NewVBox(
		s.processStats,
		s.processSummary,
	))
	processScroll.SetMinSize(fyne.NewSize(0, 150))

	return container.NewBorder(
		container.NewPadded(headerContent), // top (fixed)
		nil,                                // bottom
		nil,                                // left
		nil,                                // right
		container.NewPadded(processScroll), // center (fills remaining space, scrollable)
	)
}

// updateFileCount scans for documents and updates the count label
func (s *StepBuilder) updateFileCount() {
	inputFolder := strings.TrimSpace(s.inputFolderEntry.Text)
	if inputFolder == "" {
		s.fileCountLabel.SetText("")
		return
	}

	s.fileCountLabel.SetText("Scanning...")

	go func() {
		files, err := scan.Find(inputFolder, scan.Options{
			Recursive: true,
			SkipDir:   filepath.Join(inputFolder, anonymizer.DefaultOutputDir),
		})
		notes, dicoms := 0, 0
		if err == nil {
			for _, f := range files {
				if f.Kind == scan.KindNote {
					notes++
				} else {
					dicoms++
				}
			}
		}

		// Update UI - Fyne v2.4 handles thread safety for widget updates
		if notes+dicoms == 0 {
			s.fileCountLabel.SetText("No notes or DICOM files found")
		} else {
			s.fileCountLabel.SetText(fmt.Sprintf("Found %d note(s) and %d DICOM file(s)", notes, dicoms))
		}
	}()
}

// updateReferenceHint passes the reference to the wizard, which gates Next on it
func (s *StepBuilder) updateReferenceHint() {
	if !s.wizard.SetReference(strings.TrimSpace(s.referenceEntry.Text)) {
		s.referenceHint.SetText("Enter a valid date as YYYY-MM-DD")
		return
	}
	s.referenceHint.SetText("")
}

// autoSetOutputFolder sets the output folder based on the input folder
func (s *StepBuilder) autoSetOutputFolder() {
	inputFolder := strings.TrimSpace(s.inputFolderEntry.Text)
	if inputFolder == "" || s.outputFolderEntry == nil {
		return
	}
	s.outputFolderEntry.SetText(filepath.Join(inputFolder, anonymizer.DefaultOutputDir))
}

// ReferenceText returns the reference date as typed on the input step.
func (s *StepBuilder) ReferenceText() string {
	if s.referenceEntry == nil {
		return calendar.Today(time.Local).String()
	}
	return strings.TrimSpace(s.referenceEntry.Text)
}

// ValidateStep1 validates the input step
func (s *StepBuilder) ValidateStep1() bool {
	inputFolder := strings.TrimSpace(s.inputFolderEntry.Text)
	if inputFolder == "" {
		dialog.ShowError(fmt.Errorf("please enter an input folder path"), s.window)
		return false
	}

	if _, err := calendar.Parse(s.ReferenceText()); err != nil {
		dialog.ShowError(fmt.Errorf("please enter the reference date as YYYY-MM-DD"), s.window)
		return false
	}

	return true
}

// ValidateStep2 validates the settings step
func (s *StepBuilder) ValidateStep2() bool {
	if !s.notesCheck.Checked && !s.dicomCheck.Checked {
		dialog.ShowError(fmt.Errorf("select notes, DICOM or both"), s.window)
		return false
	}
	return true
}

// DryRunComplete reports whether the preview finished and processing may start.
func (s *StepBuilder) DryRunComplete() bool {
	return s.dryRunComplete
}

// config builds the batch configuration from the current form values
func (s *StepBuilder) config(dryRun bool) (anonymizer.Config, error) {
	ref, err := calendar.Parse(s.ReferenceText())
	if err != nil {
		return anonymizer.Config{}, err
	}

	cfg := anonymizer.Config{
		InputFolder:        strings.TrimSpace(s.inputFolderEntry.Text),
		OutputFolder:       strings.TrimSpace(s.outputFolderEntry.Text),
		Reference:          ref,
		ReferenceFromStudy: s.refFromStudyCheck.Checked,
		Recursive:          s.recursiveCheck.Checked,
		RetryFailed:        s.retryFailedCheck.Checked,
		DryRun:             dryRun,
		ProcessNotes:       s.notesCheck.Checked,
		ProcessDicom:       s.dicomCheck.Checked,
		OutputWriter:       func(msg string) {}, // We use progress callback instead
	}
	if !dryRun {
		cfg.ReportFile = strings.TrimSpace(s.reportFileEntry.Text)
	}
	return cfg, nil
}

// RunDryRun executes the dry run when entering step 3
func (s *StepBuilder) RunDryRun() {
	s.dryRunComplete = false

	s.previewProgress.SetValue(0)
	s.previewStatus.SetText("Scanning files...")
	s.previewSummary.SetText("")
	s.previewFiles.Segments = nil
	s.previewFiles.Refresh()
	s.wizard.SetNextEnabled(false)
	s.wizard.SetSpanCount(-1)

	cfg, err := s.config(true)
	if err != nil {
		s.previewStatus.SetText(fmt.Sprintf("Error: %v", err))
		return
	}

	go func() {
		stats, err := anonymizer.ProcessFolderWithProgress(context.Background(), cfg,
			func(current, total int, filename, status string) {
				s.previewProgress.SetValue(float64(current) / float64(total))
				s.previewStatus.SetText(fmt.Sprintf("Reading %s", filename))
			})
		if err != nil {
			s.previewStatus.SetText(fmt.Sprintf("Error: %v", err))
			return
		}

		if stats.Success+stats.Failed == 0 {
			s.previewStatus.SetText("No documents found")
			s.previewSummary.SetText("Please go back and check your input folder path.")
			return
		}

		s.previewProgress.SetValue(1.0)
		s.previewStatus.SetText("Scan complete!")
		s.previewSummary.SetText(fmt.Sprintf(
			"Documents: %d (%d notes, %d DICOM)\nDates to rewrite: %d\nUnreadable: %d\nReference: %s",
			stats.Success+stats.Failed, stats.Notes, stats.Dicom, stats.Spans, stats.Failed, cfg.Reference))
		s.previewFiles.Segments = append(previewSegments(cfg.InputFolder, stats.Files),
			&widget.TextSegment{Text: "Looks good? Click \"Rewrite dates\" to continue.", Style: widget.RichTextStyleParagraph})
		s.previewFiles.Refresh()
		s.wizard.SetSpanCount(stats.Spans)

		s.dryRunComplete = true
		s.wizard.SetNextEnabled(true)
	}()
}

// previewSegments lists the span count of each file and a few sample
// replacements, the date as written and its phrase in their highlight colors.
func previewSegments(inputFolder string, files []*anonymizer.FileResult) []widget.RichTextSegment {
	heading := widget.RichTextStyleParagraph
	heading.TextStyle = fyne.TextStyle{Bold: true}

	var segs []widget.RichTextSegment
	for _, f := range files {
		name, err := filepath.Rel(inputFolder, f.Path)
		if err != nil {
			name = filepath.Base(f.Path)
		}
		segs = append(segs, &widget.TextSegment{
			Text:  fmt.Sprintf("%s: %d date(s)", name, f.Spans()),
			Style: heading,
		})

		shown := 0
		for _, field := range f.Fields {
			for _, r := range field.Replacements {
				if shown == previewSamples {
					break
				}
				segs = append(segs, sampleSegments(r)...)
				shown++
			}
		}
		if more := f.Spans() - shown; more > 0 {
			segs = append(segs, &widget.TextSegment{
				Text:  fmt.Sprintf("    ... and %d more", more),
				Style: widget.RichTextStyleParagraph,
			})
		}
	}
	return segs
}

// sampleSegments renders one replacement as a line: original -> phrase.
func sampleSegments(r rewriter.Replacement) []widget.RichTextSegment {
	original := widget.RichTextStyleInline
	original.ColorName = colorNameDateOriginal
	phrase := widget.RichTextStyleParagraph
	phrase.ColorName = colorNameDateRelative

	return []widget.RichTextSegment{
		&widget.TextSegment{Text: "    ", Style: widget.RichTextStyleInline},
		&widget.TextSegment{Text: r.Original, Style: original},
		&widget.TextSegment{Text: "  ->  ", Style: widget.RichTextStyleInline},
		&widget.TextSegment{Text: r.Phrase, Style: phrase},
	}
}

// RunProcess executes the actual de-identification
func (s *StepBuilder) RunProcess() {
	s.processingMu.Lock()
	if s.processing {
		s.processingMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.processing = true
	s.cancel = cancel
	s.processingMu.Unlock()

	s.processProgress.SetValue(0)
	s.processStatus.SetText("Starting...")
	s.processFileCount.SetText("")
	s.processCurrentFile.SetText("")
	s.processStats.SetText("")
	s.processSummary.SetText("")
	s.wizard.SetBackEnabled(false)
	s.wizard.SetNextEnabled(false)

	cfg, err := s.config(false)
	if err != nil {
		s.finishProcess()
		s.processStatus.SetText("Error!")
		s.processSummary.SetText(fmt.Sprintf("Error: %v", err))
		s.wizard.SetNextEnabled(true)
		return
	}

	go func() {
		defer s.finishProcess()

		// Progress callback
		successCount := 0
		failedCount := 0
		skippedCount := 0

		progressCallback := func(current, total int, filename, status string) {
			switch status {
			case anonymizer.StatusSuccess:
				successCount++
			case anonymizer.StatusFailed:
				failedCount++
			case anonymizer.StatusSkipped:
				skippedCount++
			}

			// Update UI - Fyne v2.4 handles thread safety for widget updates
			s.processProgress.SetValue(float64(current) / float64(total))
			s.processFileCount.SetText(fmt.Sprintf("Processing %d/%d files", current, total))
			s.processCurrentFile.SetText(fmt.Sprintf("Current: %s", filename))
			s.processStats.SetText(fmt.Sprintf("Success: %d | Skipped: %d | Failed: %d",
				successCount, skippedCount, failedCount))
		}

		stats, err := anonymizer.ProcessFolderWithProgress(ctx, cfg, progressCallback)

		// Update UI with final state
		if err != nil {
			s.processStatus.SetText("Error!")
			s.processSummary.SetText(fmt.Sprintf("Error: %v", err))
		} else {
			s.processProgress.SetValue(1.0)
			s.processStatus.SetText("Complete!")
			s.processStats.SetText(fmt.Sprintf("Success: %d | Skipped: %d | Failed: %d",
				stats.Success, stats.Skipped, stats.Failed))
			summary := fmt.Sprintf("Rewrote %d date(s) in %d note(s) and %d DICOM file(s)\n\nOutput: %s",
				stats.Spans, stats.Notes, stats.Dicom, cfg.ResolveOutputFolder())
			if cfg.ReportFile != "" {
				summary += "\nReport: " + cfg.ReportFile
			}
			if stats.Failed > 0 {
				summary += "\nErrors: " + filepath.Join(cfg.ResolveOutputFolder(), "errors.log")
			}
			s.processSummary.SetText(summary)
			s.wizard.SetSpanCount(stats.Spans)
		}

		s.wizard.SetNextText("Done")
		s.wizard.SetNextEnabled(true)
	}()
}

func (s *StepBuilder) finishProcess() {
	s.processingMu.Lock()
	defer s.processingMu.Unlock()
	s.processing = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Cancel stops scheduling new files in a running batch.
func (s *StepBuilder) Cancel() {
	s.processingMu.Lock()
	defer s.processingMu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// IsProcessing returns whether processing is in progress
func (s *StepBuilder) IsProcessing() bool {
	s.processingMu.Lock()
	defer s.processingMu.Unlock()
	return s.processing
}
