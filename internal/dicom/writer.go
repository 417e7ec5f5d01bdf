package dicom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// SetString replaces the value of an existing text element. Missing
// elements are left absent.
func (d *Dataset) SetString(t tag.Tag, value string) error {
	for i, elem := range d.Data.Elements {
		if elem.Tag != t {
			continue
		}

		newValue, err := dicom.NewValue([]string{value})
		if err != nil {
			return fmt.Errorf("could not create value: %w", err)
		}

		d.Data.Elements[i] = &dicom.Element{
			Tag:                    t,
			ValueRepresentation:    elem.ValueRepresentation,
			RawValueRepresentation: elem.RawValueRepresentation,
			ValueLength:            uint32(len(value)),
			Value:                  newValue,
		}
		return nil
	}
	return nil
}

// Save writes the DICOM dataset to a file.
func (d *Dataset) Save(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer file.Close()

	// Write DICOM with relaxed verification (many real-world DICOM files
	// don't strictly follow VR specifications)
	if err := dicom.Write(file, d.Data,
		dicom.SkipVRVerification(),
		dicom.SkipValueTypeVerification(),
		dicom.DefaultMissingTransferSyntax(),
	); err != nil {
		return fmt.Errorf("could not write DICOM: %w", err)
	}

	return file.Close()
}
