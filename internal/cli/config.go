package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML config file read with --config. Unset fields keep
// the flag defaults.
type FileConfig struct {
	Reference          string   `yaml:"reference"`
	Output             string   `yaml:"output"`
	Recursive          *bool    `yaml:"recursive"`
	Notes              *bool    `yaml:"notes"`
	Dicom              *bool    `yaml:"dicom"`
	ReferenceFromStudy *bool    `yaml:"ref_from_study"`
	NoteExtensions     []string `yaml:"note_extensions"`
	NarrativeTags      []string `yaml:"narrative_tags"`
	Workers            int      `yaml:"workers"`
	Report             string   `yaml:"report"`
}

// LoadConfig reads a YAML config file. Unknown keys are rejected.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply fills opts from the config file. Options whose flag was given on
// the command line (explicit reports them by long name) are left alone.
func (fc *FileConfig) Apply(opts *Options, explicit func(flag string) bool) {
	if fc.Reference != "" && !explicit("ref") {
		opts.Reference = fc.Reference
	}
	if fc.Output != "" && !explicit("output") {
		opts.OutputFolder = fc.Output
	}
	if fc.Recursive != nil && !explicit("recursive") {
		opts.Recursive = *fc.Recursive
	}
	if fc.Notes != nil && !explicit("notes") {
		opts.ProcessNotes = *fc.Notes
	}
	if fc.Dicom != nil && !explicit("dicom") {
		opts.ProcessDicom = *fc.Dicom
	}
	if fc.ReferenceFromStudy != nil && !explicit("ref-from-study") {
		opts.ReferenceFromStudy = *fc.ReferenceFromStudy
	}
	if len(fc.NoteExtensions) > 0 {
		opts.NoteExtensions = fc.NoteExtensions
	}
	if len(fc.NarrativeTags) > 0 {
		opts.NarrativeTags = fc.NarrativeTags
	}
	if fc.Workers > 0 && !explicit("workers") {
		opts.Workers = fc.Workers
	}
	if fc.Report != "" && !explicit("report") {
		opts.ReportFile = fc.Report
	}
}
