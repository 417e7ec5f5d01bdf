package anonymizer

import (
	"fmt"
	"os"
	"path/filepath"

	"date-deidentifier/internal/calendar"
	"date-deidentifier/internal/rewriter"
)

// NoteField is the field name reported for plain-text notes.
const NoteField = "text"

// DeidentifyNote rewrites the dates in a narrative note and writes the result
// to outputPath, keeping the source file's permissions.
func DeidentifyNote(inputPath, outputPath string, reference calendar.Date, dryRun bool) (*FileResult, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("could not stat note: %w", err)
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("could not read note: %w", err)
	}

	rewritten, replacements, err := rewriter.RewriteWithReport(string(data), reference)
	if err != nil {
		return nil, err
	}

	result := &FileResult{
		Path:      inputPath,
		Kind:      KindNote,
		Reference: reference,
	}
	if len(replacements) > 0 {
		result.Fields = []FieldResult{{Field: NoteField, Replacements: replacements}}
	}

	if dryRun {
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(rewritten), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("could not write note: %w", err)
	}
	result.Output = outputPath
	return result, nil
}
