package anonymizer

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// DefaultNarrativeTags are free-text DICOM attributes that commonly carry
// dates typed by staff. Structured DA/DT attributes are not touched.
var DefaultNarrativeTags = []tag.Tag{
	tag.StudyDescription,
	tag.SeriesDescription,
	tag.PatientComments,
	tag.ImageComments,
	tag.AdditionalPatientHistory,
	tag.RequestedProcedureDescription,
	tag.PerformedProcedureStepDescription,
}

// ResolveTags maps DICOM keywords (e.g. "StudyDescription") to tags.
func ResolveTags(names []string) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		info, err := tag.FindByName(name)
		if err != nil {
			return nil, fmt.Errorf("unknown DICOM tag %q: %w", name, err)
		}
		tags = append(tags, info.Tag)
	}
	return tags, nil
}

// TagName returns the DICOM keyword for t, or its (gggg,eeee) form when unknown.
func TagName(t tag.Tag) string {
	info, err := tag.Find(t)
	if err != nil {
		return t.String()
	}
	return info.Name
}
