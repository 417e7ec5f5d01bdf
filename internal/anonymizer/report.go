package anonymizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"date-deidentifier/internal/calendar"
)

// Report is the JSON document written to Config.ReportFile.
type Report struct {
	Generated string        `json:"generated"`
	Reference calendar.Date `json:"reference"`
	Documents int           `json:"documents"`
	Spans     int           `json:"spans"`
	Files     []*FileResult `json:"files"`
}

// WriteReport writes every replacement made per file as indented JSON.
func WriteReport(path string, reference calendar.Date, files []*FileResult) error {
	report := Report{
		Generated: time.Now().Format(time.RFC3339),
		Reference: reference,
		Documents: len(files),
		Files:     files,
	}
	if report.Files == nil {
		report.Files = []*FileResult{}
	}
	for _, f := range files {
		report.Spans += f.Spans()
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	return nil
}
