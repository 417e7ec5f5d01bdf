package anonymizer

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/tag"

	"date-deidentifier/internal/calendar"
	dcm "date-deidentifier/internal/dicom"
	"date-deidentifier/internal/rewriter"
)

// DeidentifyDicom rewrites the dates in the narrative tags of a DICOM file.
// With useStudyDate, the file's own StudyDate (when valid) is the reference.
// Pixel data and structured attributes are copied unchanged. In dry-run mode
// nothing is written and only metadata is parsed.
func DeidentifyDicom(inputPath, outputPath string, reference calendar.Date, tags []tag.Tag, useStudyDate, dryRun bool) (*FileResult, error) {
	read := dcm.ReadDicom
	if dryRun {
		read = dcm.ReadDicomMetadataOnly
	}
	ds, err := read(inputPath)
	if err != nil {
		return nil, err
	}

	if useStudyDate {
		if studyDate, ok := ds.StudyDate(); ok {
			reference = studyDate
		}
	}

	result := &FileResult{
		Path:      inputPath,
		Kind:      KindDicom,
		Modality:  ds.GetModality(),
		Reference: reference,
	}

	for _, t := range tags {
		value := ds.GetString(t)
		if value == "" {
			continue
		}

		rewritten, replacements, err := rewriter.RewriteWithReport(value, reference)
		if err != nil {
			return nil, err
		}
		if len(replacements) == 0 {
			continue
		}

		result.Fields = append(result.Fields, FieldResult{Field: TagName(t), Replacements: replacements})
		if err := ds.SetString(t, rewritten); err != nil {
			return nil, fmt.Errorf("could not update %s: %w", TagName(t), err)
		}
	}

	if dryRun {
		return result, nil
	}

	if err := ds.Save(outputPath); err != nil {
		return nil, err
	}
	result.Output = outputPath
	return result, nil
}
