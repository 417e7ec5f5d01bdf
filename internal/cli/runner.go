package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"date-deidentifier/internal/anonymizer"
	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/datespan"
	"date-deidentifier/internal/rewriter"
)

// ErrMissingReference is returned when no reference date was given on the
// command line or in the config file.
var ErrMissingReference = errors.New("reference date is required (--ref YYYY-MM-DD)")

// Options holds CLI configuration options
type Options struct {
	InputFolder        string
	OutputFolder       string
	Reference          string
	ReferenceFromStudy bool
	Recursive          bool
	RetryFailed        bool
	ProcessNotes       bool
	ProcessDicom       bool
	NoteExtensions     []string
	NarrativeTags      []string
	Workers            int
	ReportFile         string
	DryRun             bool
}

// ParseReference parses a YYYY-MM-DD reference date.
func ParseReference(value string) (calendar.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return calendar.Date{}, ErrMissingReference
	}
	ref, err := calendar.Parse(value)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("invalid reference date %q: %w", value, err)
	}
	return ref, nil
}

// Config validates opts and converts them to a batch configuration.
func (opts Options) Config() (anonymizer.Config, error) {
	if opts.InputFolder == "" {
		return anonymizer.Config{}, fmt.Errorf("input folder is required")
	}

	info, err := os.Stat(opts.InputFolder)
	if err != nil {
		return anonymizer.Config{}, fmt.Errorf("input folder does not exist: %s", opts.InputFolder)
	}
	if !info.IsDir() {
		return anonymizer.Config{}, fmt.Errorf("input path is not a directory: %s", opts.InputFolder)
	}

	ref, err := ParseReference(opts.Reference)
	if err != nil {
		return anonymizer.Config{}, err
	}

	tags, err := anonymizer.ResolveTags(opts.NarrativeTags)
	if err != nil {
		return anonymizer.Config{}, err
	}

	return anonymizer.Config{
		InputFolder:        opts.InputFolder,
		OutputFolder:       opts.OutputFolder,
		Reference:          ref,
		ReferenceFromStudy: opts.ReferenceFromStudy,
		Recursive:          opts.Recursive,
		RetryFailed:        opts.RetryFailed,
		DryRun:             opts.DryRun,
		ProcessNotes:       opts.ProcessNotes,
		ProcessDicom:       opts.ProcessDicom,
		NoteExtensions:     opts.NoteExtensions,
		NarrativeTags:      tags,
		Workers:            opts.Workers,
		ReportFile:         opts.ReportFile,
	}, nil
}

// Run executes the batch de-identification of a folder.
func Run(ctx context.Context, opts Options) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	// Print header
	printHeader(cfg)

	var dryRunLog strings.Builder
	if opts.DryRun {
		// The dry run listing is printed after the progress bar.
		cfg.OutputWriter = func(s string) { dryRunLog.WriteString(s) }
	} else {
		cfg.OutputWriter = func(s string) {} // Suppress internal output, we use progress callback
	}

	// Create progress bar
	pb := newProgressBar(50)

	// Progress callback
	progressCallback := func(current, total int, filename, status string) {
		pb.update(current, total)
	}

	// Run de-identification
	if opts.DryRun {
		fmt.Println("\n[DRY RUN MODE]")
	}
	fmt.Println()

	stats, err := anonymizer.ProcessFolderWithProgress(ctx, cfg, progressCallback)
	if err != nil && stats == nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	// Print final progress bar at 100%
	if stats.Success > 0 || stats.Failed > 0 || stats.Skipped > 0 {
		total := stats.Success + stats.Failed + stats.Skipped
		pb.update(total, total)
		fmt.Println()
	}

	if opts.DryRun {
		fmt.Print(dryRunLog.String())
	}

	// Print summary
	printSummary(stats, cfg)

	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	return nil
}

// RunText rewrites a single text, or with extract lists the date spans it
// contains as JSON lines, writing to w.
func RunText(w io.Writer, text, reference string, extract bool) error {
	ref, err := ParseReference(reference)
	if err != nil {
		return err
	}

	rewritten, replacements, err := rewriter.RewriteWithReport(text, ref)
	if err != nil {
		return err
	}

	if !extract {
		_, err := fmt.Fprintln(w, rewritten)
		return err
	}

	enc := json.NewEncoder(w)
	for _, r := range replacements {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("could not encode span: %w", err)
		}
	}
	return nil
}

// PrintUsage prints CLI usage information
func PrintUsage() {
	fmt.Printf(`Date De-identifier - Command Line Interface

USAGE:
  deid                                  Launch GUI (default)
  deid -i <path> --ref <date> [flags]   De-identify a folder
  deid -t <text> --ref <date>           Rewrite a single text

Absolute dates in narrative notes and DICOM free-text fields are replaced by
phrases relative to the reference date, e.g. "on 3 June 2021" becomes
"3 years 4 months ago" for --ref 2024-10-29.

RECOGNISED DATES (earlier forms win when they overlap):
  1. Day month year      3rd June 2021, 14-Nov-2024, on 01 Jan 2020
  2. Month year          April 2022, in Sept 2019
  3. Numeric             23-06-2020 (DD-MM-YYYY)
  4. Year                2019 (only %d-%d)

FLAGS:
  -i, --input <path>      Input folder containing notes and/or DICOM files
  -o, --output <path>     Output folder (default: {input}/deidentified)
      --ref <date>        Reference date, YYYY-MM-DD (required)
      --ref-from-study    Use each DICOM file's StudyDate as its reference
  -r, --recursive         Search subdirectories (default: true)
      --retry             Retry previously failed files from a previous run
      --notes             Process narrative notes (.txt, .md, .note) (default: true)
      --dicom             Process DICOM free-text fields (default: true)
  -n, --dry-run           Preview the replacements, no files written
  -w, --workers <n>       Files processed in parallel (default: CPU count)
      --report <path>     Write a JSON report of every replacement
  -c, --config <path>     YAML file with defaults for the flags above
  -t, --text <text>       Rewrite a single text and print it
      --extract           With --text, print the date spans as JSON lines
  -h, --help              Show this help message

CONFIG FILE:
  reference: 2024-10-29
  output: /data/deidentified
  recursive: true
  notes: true
  dicom: true
  ref_from_study: false
  note_extensions: [.txt, .md]
  narrative_tags: [StudyDescription, ImageComments]
  workers: 4
  report: /data/report.json

  Flags given on the command line override the file.

EXAMPLES:
  # Preview first (recommended)
  ./deid -i /path/to/notes --ref 2024-10-29 -n

  # De-identify and keep a report
  ./deid -i /path/to/notes --ref 2024-10-29 --report report.json

  # DICOM only, relative to each study's own date
  ./deid -i /path/to/dicoms --notes=false --ref 2024-10-29 --ref-from-study

  # Retry failed files from previous run
  ./deid -i /path/to/notes --ref 2024-10-29 --retry

  # Try a sentence
  ./deid -t "Seen on 3 June 2021" --ref 2024-10-29

OUTPUT:
  De-identified files: {output}/{relative path}
  Progress file:       {output}/.progress.json
  Error log:           {output}/errors.log

Source files are never modified.
`, datespan.MinStandaloneYear, datespan.MaxStandaloneYear)
}

// printHeader prints the CLI header with configuration
func printHeader(cfg anonymizer.Config) {
	fmt.Println("Date De-identifier")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Input:     %s\n", cfg.InputFolder)
	fmt.Printf("Output:    %s\n", cfg.ResolveOutputFolder())
	if cfg.ReferenceFromStudy {
		fmt.Printf("Reference: %s (DICOM: StudyDate when present)\n", cfg.Reference)
	} else {
		fmt.Printf("Reference: %s\n", cfg.Reference)
	}

	// Build document type string
	var kinds []string
	if cfg.ProcessNotes {
		kinds = append(kinds, "Notes")
	}
	if cfg.ProcessDicom {
		kinds = append(kinds, "DICOM")
	}
	if len(kinds) == 0 {
		kinds = append(kinds, "None")
	}
	fmt.Printf("Documents: %s\n", strings.Join(kinds, ", "))

	// Build options string
	var options []string
	if cfg.Recursive {
		options = append(options, "Recursive")
	}
	if cfg.RetryFailed {
		options = append(options, "Retry failed")
	}
	if cfg.DryRun {
		options = append(options, "Dry run")
	}
	if cfg.Workers > 0 {
		options = append(options, fmt.Sprintf("%d workers", cfg.Workers))
	}
	if len(options) > 0 {
		fmt.Printf("Options:   %s\n", strings.Join(options, ", "))
	}
}

// printSummary prints the processing summary
func printSummary(stats *anonymizer.Stats, cfg anonymizer.Config) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	if cfg.DryRun {
		fmt.Printf("Dry run: %d date(s) in %d document(s) would be rewritten\n", stats.Spans, stats.Success)
	} else {
		fmt.Printf("Complete! %d succeeded, %d failed, %d skipped\n",
			stats.Success, stats.Failed, stats.Skipped)
		fmt.Printf("Dates:     %d rewritten (%d notes, %d DICOM)\n", stats.Spans, stats.Notes, stats.Dicom)
		fmt.Printf("Output:    %s\n", cfg.ResolveOutputFolder())
	}
	if cfg.ReportFile != "" {
		fmt.Printf("Report:    %s\n", cfg.ReportFile)
	}
}

// progressBar represents a terminal progress bar
type progressBar struct {
	width int
}

// newProgressBar creates a new progress bar with specified width
func newProgressBar(width int) *progressBar {
	return &progressBar{width: width}
}

// update updates the progress bar display
func (pb *progressBar) update(current, total int) {
	if total == 0 {
		return
	}

	percent := float64(current) / float64(total)
	filled := int(percent * float64(pb.width))
	if filled > pb.width {
		filled = pb.width
	}

	bar := strings.Repeat("#", filled) + strings.Repeat("-", pb.width-filled)
	fmt.Printf("\r[%s] %3.0f%%  (%d/%d)", bar, percent*100, current, total)
}
