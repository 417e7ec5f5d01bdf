package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"date-deidentifier/internal/cli"
	"date-deidentifier/internal/gui"
)

// shorthands maps short flag names to their long form.
var shorthands = map[string]string{
	"i": "input",
	"o": "output",
	"r": "recursive",
	"n": "dry-run",
	"w": "workers",
	"c": "config",
	"t": "text",
	"h": "help",
}

func main() {
	// Define flags
	input := flag.String("input", "", "Input folder containing notes and/or DICOM files")
	inputShort := flag.String("i", "", "Input folder (shorthand)")

	output := flag.String("output", "", "Output folder")
	outputShort := flag.String("o", "", "Output folder (shorthand)")

	ref := flag.String("ref", "", "Reference date (YYYY-MM-DD)")
	refFromStudy := flag.Bool("ref-from-study", false, "Use each DICOM file's StudyDate as its reference")

	recursive := flag.Bool("recursive", true, "Search subdirectories")
	recursiveShort := flag.Bool("r", true, "Recursive (shorthand)")

	retry := flag.Bool("retry", false, "Retry previously failed files")

	notes := flag.Bool("notes", true, "Process narrative notes")
	dicom := flag.Bool("dicom", true, "Process DICOM free-text fields")

	dryRun := flag.Bool("dry-run", false, "Preview only, no files written")
	dryRunShort := flag.Bool("n", false, "Dry run (shorthand)")

	workers := flag.Int("workers", runtime.NumCPU(), "Files processed in parallel")
	workersShort := flag.Int("w", 0, "Workers (shorthand)")

	report := flag.String("report", "", "JSON report of every replacement")

	config := flag.String("config", "", "YAML config file")
	configShort := flag.String("c", "", "Config file (shorthand)")

	text := flag.String("text", "", "Rewrite a single text")
	textShort := flag.String("t", "", "Text (shorthand)")
	extract := flag.Bool("extract", false, "With --text, list date spans as JSON lines")

	help := flag.Bool("help", false, "Show help message")
	helpShort := flag.Bool("h", false, "Help (shorthand)")

	// Custom usage message
	flag.Usage = func() {
		cli.PrintUsage()
	}

	flag.Parse()

	// Handle help flag
	if *help || *helpShort {
		cli.PrintUsage()
		return
	}

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := shorthands[name]; ok {
			name = long
		}
		explicit[name] = true
	})

	// Merge short and long flags (prefer long if both specified)
	inputFolder := *input
	if inputFolder == "" {
		inputFolder = *inputShort
	}

	outputFolder := *output
	if outputFolder == "" {
		outputFolder = *outputShort
	}

	configFile := *config
	if configFile == "" {
		configFile = *configShort
	}

	singleText := *text
	if singleText == "" {
		singleText = *textShort
	}

	isRecursive := *recursive
	if !*recursiveShort {
		isRecursive = false
	}

	numWorkers := *workers
	if *workersShort > 0 {
		numWorkers = *workersShort
	}

	isDryRun := *dryRun || *dryRunShort

	opts := cli.Options{
		InputFolder:        inputFolder,
		OutputFolder:       outputFolder,
		Reference:          *ref,
		ReferenceFromStudy: *refFromStudy,
		Recursive:          isRecursive,
		RetryFailed:        *retry,
		ProcessNotes:       *notes,
		ProcessDicom:       *dicom,
		Workers:            numWorkers,
		ReportFile:         *report,
		DryRun:             isDryRun,
	}

	if configFile != "" {
		fc, err := cli.LoadConfig(configFile)
		if err != nil {
			fail(err)
		}
		fc.Apply(&opts, func(name string) bool { return explicit[name] })
	}

	// Single text mode
	if explicit["text"] {
		if err := cli.RunText(os.Stdout, singleText, opts.Reference, *extract); err != nil {
			fail(err)
		}
		return
	}

	// No input folder specified = GUI mode
	if opts.InputFolder == "" {
		app := gui.NewApp()
		app.Run()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, opts); err != nil {
		stop()
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
