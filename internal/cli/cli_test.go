package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom/pkg/tag"

	"date-deidentifier/internal/calendar"
)

func TestRunText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"full date", "Seen on 3 June 2021.", "Seen 3 years 4 months ago.\n"},
		{"future", "Booked for 14-Nov-2024", "Booked for recently\n"},
		{"no dates", "Patient is stable.", "Patient is stable.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, RunText(&out, tt.text, "2024-10-29", false))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunTextExtract(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunText(&out, "Admitted on 01-01-2020; reviewed in 2023.", "2024-10-29", true))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "on 01-01-2020", first["original"])
	assert.Equal(t, "2020-01-01", first["date"])
	assert.Equal(t, "numeric-date", first["rule"])
	assert.EqualValues(t, 9, first["start"])
	assert.Equal(t, "4 years 9 months ago", first["phrase"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "in 2023", second["original"])
	assert.Equal(t, "year", second["rule"])
}

func TestParseReference(t *testing.T) {
	ref, err := ParseReference(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", ref.String())

	_, err = ParseReference("")
	assert.ErrorIs(t, err, ErrMissingReference)

	_, err = ParseReference("2023-02-29")
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	_, err = ParseReference("29/10/2024")
	assert.Error(t, err)

	var out bytes.Buffer
	assert.ErrorIs(t, RunText(&out, "on 3 June 2021", "", false), ErrMissingReference)
	assert.Empty(t, out.String())
}

func TestOptionsConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Options{
		InputFolder:   dir,
		Reference:     "2024-10-29",
		ProcessNotes:  true,
		NarrativeTags: []string{"ImageComments"},
		Workers:       3,
	}.Config()
	require.NoError(t, err)
	assert.Equal(t, calendar.MustNew(2024, 10, 29), cfg.Reference)
	assert.Equal(t, []tag.Tag{tag.ImageComments}, cfg.NarrativeTags)
	assert.Equal(t, 3, cfg.Workers)

	_, err = Options{InputFolder: dir}.Config()
	assert.ErrorIs(t, err, ErrMissingReference)

	_, err = Options{Reference: "2024-10-29"}.Config()
	assert.Error(t, err)

	_, err = Options{InputFolder: filepath.Join(dir, "missing"), Reference: "2024-10-29"}.Config()
	assert.Error(t, err)

	_, err = Options{InputFolder: dir, Reference: "2024-10-29", NarrativeTags: []string{"Bogus"}}.Config()
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("Surgery on 3 June 2021."), 0644))

	err := Run(context.Background(), Options{
		InputFolder:  dir,
		Reference:    "2024-10-29",
		Recursive:    true,
		ProcessNotes: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "deidentified", "note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Surgery 3 years 4 months ago.", string(data))
}

func TestLoadConfigAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
reference: "2024-10-29"
output: /tmp/out
recursive: false
dicom: false
note_extensions: [.txt]
narrative_tags: [StudyDescription]
workers: 8
`), 0644))

	fc, err := LoadConfig(path)
	require.NoError(t, err)

	opts := Options{
		Recursive:    true,
		ProcessNotes: true,
		ProcessDicom: true,
		Workers:      2,
	}
	explicit := map[string]bool{"workers": true}
	fc.Apply(&opts, func(name string) bool { return explicit[name] })

	assert.Equal(t, "2024-10-29", opts.Reference)
	assert.Equal(t, "/tmp/out", opts.OutputFolder)
	assert.False(t, opts.Recursive)
	assert.True(t, opts.ProcessNotes)
	assert.False(t, opts.ProcessDicom)
	assert.Equal(t, []string{".txt"}, opts.NoteExtensions)
	assert.Equal(t, []string{"StudyDescription"}, opts.NarrativeTags)
	assert.Equal(t, 2, opts.Workers, "explicit flag wins")
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("refrence: 2024-10-29\n"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	fc, err := LoadConfig(empty)
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, fc)
}
