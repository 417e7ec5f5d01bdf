// Package anonymizer de-identifies the dates in a folder of narrative notes
// and DICOM files.
package anonymizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/sync/errgroup"

	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/progress"
	"date-deidentifier/internal/rewriter"
	"date-deidentifier/internal/scan"
)

// Document kinds, re-exported for callers that only import this package.
const (
	KindNote  = scan.KindNote
	KindDicom = scan.KindDicom
)

// Progress statuses passed to a ProgressCallback.
const (
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
)

// DefaultOutputDir is created inside the input folder when no output folder is set.
const DefaultOutputDir = "deidentified"

// Config holds the de-identification configuration
type Config struct {
	InputFolder        string
	OutputFolder       string        // defaults to <input>/deidentified
	Reference          calendar.Date // "now" for every relative phrase
	ReferenceFromStudy bool          // use each DICOM file's StudyDate when present
	Recursive          bool
	RetryFailed        bool
	DryRun             bool
	ProcessNotes       bool
	ProcessDicom       bool
	NoteExtensions     []string
	NarrativeTags      []tag.Tag // defaults to DefaultNarrativeTags
	Workers            int       // defaults to runtime.NumCPU()
	ReportFile         string
	OutputWriter       func(string) // For GUI output
}

// Stats holds processing statistics
type Stats struct {
	Success int
	Failed  int
	Skipped int
	Notes   int
	Dicom   int
	Spans   int
	Files   []*FileResult // per-file results in path order
}

// FieldResult lists the replacements made in one field of a document.
type FieldResult struct {
	Field        string                 `json:"field"`
	Replacements []rewriter.Replacement `json:"replacements"`
}

// FileResult describes what happened to one document.
type FileResult struct {
	Path      string        `json:"path"`
	Output    string        `json:"output,omitempty"`
	Kind      scan.Kind     `json:"kind"`
	Modality  string        `json:"modality,omitempty"`
	Reference calendar.Date `json:"reference"`
	Fields    []FieldResult `json:"fields,omitempty"`
}

// Spans counts the replacements across all fields.
func (r *FileResult) Spans() int {
	n := 0
	for _, f := range r.Fields {
		n += len(f.Replacements)
	}
	return n
}

// ProgressCallback is called during processing to report progress
type ProgressCallback func(current, total int, filename, status string)

// ResolveOutputFolder returns the folder de-identified documents are written to.
func (cfg Config) ResolveOutputFolder() string {
	if cfg.OutputFolder != "" {
		return cfg.OutputFolder
	}
	return filepath.Join(cfg.InputFolder, DefaultOutputDir)
}

func (cfg Config) kinds() []scan.Kind {
	var kinds []scan.Kind
	if cfg.ProcessNotes {
		kinds = append(kinds, scan.KindNote)
	}
	if cfg.ProcessDicom {
		kinds = append(kinds, scan.KindDicom)
	}
	return kinds
}

// runKey identifies the reference used for resume checks.
func (cfg Config) runKey() string {
	if cfg.ReferenceFromStudy {
		return cfg.Reference.String() + "+study"
	}
	return cfg.Reference.String()
}

// ProcessFolder de-identifies all documents in a folder.
func ProcessFolder(cfg Config) (*Stats, error) {
	return ProcessFolderWithProgress(context.Background(), cfg, nil)
}

// ProcessFolderWithProgress de-identifies all documents in a folder,
// reporting each file to progressCb. Per-file failures are counted and
// logged. Cancelling ctx stops scheduling new files.
func ProcessFolderWithProgress(ctx context.Context, cfg Config, progressCb ProgressCallback) (*Stats, error) {
	output := cfg.OutputWriter
	if output == nil {
		output = func(s string) { fmt.Print(s) }
	}

	if !cfg.Reference.IsValid() {
		return nil, fmt.Errorf("%w: %s", rewriter.ErrInvalidReference, cfg.Reference)
	}
	if info, err := os.Stat(cfg.InputFolder); err != nil {
		return nil, fmt.Errorf("could not open input folder: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("input %s is not a folder", cfg.InputFolder)
	}

	kinds := cfg.kinds()
	if len(kinds) == 0 {
		return nil, fmt.Errorf("nothing to process: enable notes or DICOM")
	}

	tags := cfg.NarrativeTags
	if len(tags) == 0 {
		tags = DefaultNarrativeTags
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	inputFolder := cfg.InputFolder
	outputFolder := cfg.ResolveOutputFolder()

	var tracker *progress.Tracker
	var errorLogger *progress.ErrorLogger
	var err error

	if cfg.DryRun {
		tracker = progress.NewTracker("")
		errorLogger, err = progress.NewErrorLogger("")
	} else {
		tracker = progress.NewTracker(filepath.Join(outputFolder, ".progress.json"))
		errorLogger, err = progress.NewErrorLogger(filepath.Join(outputFolder, "errors.log"))
	}
	if err != nil {
		return nil, fmt.Errorf("could not create error logger: %w", err)
	}
	defer errorLogger.Close()

	if cfg.RetryFailed {
		if n := tracker.ClearFailed(); n > 0 {
			output(fmt.Sprintf("Retrying %d previously failed file(s)\n", n))
		}
	}

	files, err := scan.Find(inputFolder, scan.Options{
		Recursive:      cfg.Recursive,
		Kinds:          kinds,
		NoteExtensions: cfg.NoteExtensions,
		SkipDir:        outputFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("could not find documents: %w", err)
	}

	if len(files) == 0 {
		output(fmt.Sprintf("No documents found in %s\n", inputFolder))
		return &Stats{}, nil
	}

	notes, dicoms := countKinds(files)
	output(fmt.Sprintf("Found %d document(s) in %s (%d notes, %d DICOM)\n", len(files), inputFolder, notes, dicoms))
	output(fmt.Sprintf("Reference date: %s\n", cfg.Reference))
	if cfg.DryRun {
		output("\n[DRY RUN] Would rewrite:\n")
	}

	stats := &Stats{}
	var mu sync.Mutex
	done := 0
	runKey := cfg.runKey()

	report := func(filePath, status string) {
		if progressCb != nil {
			progressCb(done, len(files), filepath.Base(filePath), status)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		file := file

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if !cfg.DryRun && tracker.IsProcessed(file.Path, runKey) {
				mu.Lock()
				done++
				stats.Skipped++
				report(file.Path, StatusSkipped)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			report(file.Path, StatusProcessing)
			mu.Unlock()

			outputPath := mirrorPath(inputFolder, outputFolder, file.Path)

			var result *FileResult
			var processErr error
			switch file.Kind {
			case scan.KindNote:
				result, processErr = DeidentifyNote(file.Path, outputPath, cfg.Reference, cfg.DryRun)
			case scan.KindDicom:
				result, processErr = DeidentifyDicom(file.Path, outputPath, cfg.Reference, tags, cfg.ReferenceFromStudy, cfg.DryRun)
			}

			mu.Lock()
			defer mu.Unlock()
			done++

			if processErr != nil {
				stats.Failed++
				errorLogger.Log(file.Path, processErr)
				if !cfg.DryRun {
					tracker.MarkError(file.Path, runKey, processErr.Error())
				}
				output(fmt.Sprintf("  Error: %s: %s\n", filepath.Base(file.Path), processErr))
				report(file.Path, StatusFailed)
				return nil
			}

			stats.Success++
			stats.Spans += result.Spans()
			stats.Files = append(stats.Files, result)
			if file.Kind == scan.KindNote {
				stats.Notes++
			} else {
				stats.Dicom++
			}

			if cfg.DryRun {
				output(dryRunLine(inputFolder, result))
			} else {
				tracker.MarkSuccess(file.Path, outputPath, runKey, result.Spans())
			}
			report(file.Path, StatusSuccess)
			return nil
		})
	}

	// Per-file failures are counted, not returned; only cancellation ends the run early.
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	sort.Slice(stats.Files, func(i, j int) bool { return stats.Files[i].Path < stats.Files[j].Path })

	if cfg.ReportFile != "" {
		if err := WriteReport(cfg.ReportFile, cfg.Reference, stats.Files); err != nil {
			return stats, err
		}
	}

	// Print summary
	output(fmt.Sprintf("\n%s\n", strings.Repeat("=", 50)))
	if cfg.DryRun {
		output(fmt.Sprintf("Dry run: %d date(s) in %d document(s) would be rewritten\n", stats.Spans, stats.Success))
	} else {
		output(fmt.Sprintf("Complete! %d succeeded, %d failed, %d skipped\n",
			stats.Success, stats.Failed, stats.Skipped))
		output(fmt.Sprintf("Dates rewritten: %d (%d notes, %d DICOM)\n", stats.Spans, stats.Notes, stats.Dicom))
		output(fmt.Sprintf("  %s\n", errorLogger.Summary()))
		output(fmt.Sprintf("Output: %s\n", outputFolder))
	}
	if cfg.ReportFile != "" {
		output(fmt.Sprintf("Report: %s\n", cfg.ReportFile))
	}

	if runErr != nil {
		return stats, fmt.Errorf("processing interrupted: %w", runErr)
	}
	return stats, nil
}

// mirrorPath maps a file under inputFolder to the same relative path under outputFolder.
func mirrorPath(inputFolder, outputFolder, filePath string) string {
	relPath, err := filepath.Rel(inputFolder, filePath)
	if err != nil {
		relPath = filepath.Base(filePath)
	}
	return filepath.Join(outputFolder, relPath)
}

func countKinds(files []scan.File) (notes, dicoms int) {
	for _, f := range files {
		if f.Kind == scan.KindNote {
			notes++
		} else {
			dicoms++
		}
	}
	return notes, dicoms
}

func dryRunLine(inputFolder string, r *FileResult) string {
	name, err := filepath.Rel(inputFolder, r.Path)
	if err != nil {
		name = filepath.Base(r.Path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s (%s): %d date(s)\n", name, r.Kind, r.Spans())
	for _, f := range r.Fields {
		for _, rep := range f.Replacements {
			fmt.Fprintf(&b, "    %s: %q -> %q\n", f.Field, rep.Original, rep.Phrase)
		}
	}
	return b.String()
}
