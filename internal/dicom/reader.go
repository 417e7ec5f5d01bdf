package dicom

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"date-deidentifier/internal/calendar"
)

// Dataset wraps a DICOM dataset for easier access
type Dataset struct {
	Data     dicom.Dataset
	FilePath string
}

// ReadDicom reads a DICOM file and returns the dataset.
func ReadDicom(path string) (*Dataset, error) {
	return read(path)
}

// ReadDicomMetadataOnly reads only the metadata (no pixel data).
func ReadDicomMetadataOnly(path string) (*Dataset, error) {
	return read(path, dicom.SkipPixelData())
}

func read(path string, opts ...dicom.ParseOption) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dicom.Parse(file, info.Size(), nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM: %w", err)
	}

	return &Dataset{
		Data:     ds,
		FilePath: path,
	}, nil
}

// GetString returns a string value for a tag, or empty string if not found.
// Multi-valued text elements are joined with the DICOM value delimiter.
func (d *Dataset) GetString(t tag.Tag) string {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil || elem.Value == nil {
		return ""
	}

	switch v := elem.Value.GetValue().(type) {
	case []string:
		return strings.Join(v, `\`)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// StudyDate returns the StudyDate (DA, YYYYMMDD) when present and valid.
func (d *Dataset) StudyDate() (calendar.Date, bool) {
	return ParseDA(d.GetString(tag.StudyDate))
}

// ParseDA parses a DICOM DA value (YYYYMMDD).
func ParseDA(value string) (calendar.Date, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 8 {
		return calendar.Date{}, false
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil {
		return calendar.Date{}, false
	}
	month, err := strconv.Atoi(value[4:6])
	if err != nil {
		return calendar.Date{}, false
	}
	day, err := strconv.Atoi(value[6:])
	if err != nil {
		return calendar.Date{}, false
	}
	date, err := calendar.New(year, time.Month(month), day)
	if err != nil {
		return calendar.Date{}, false
	}
	return date, true
}

// GetModality returns the DICOM modality (e.g., "US", "CT", "MR", "CR", "DX").
func (d *Dataset) GetModality() string {
	return d.GetString(tag.Modality)
}
