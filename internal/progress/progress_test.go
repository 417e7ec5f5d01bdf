package progress

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerResume(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(note, []byte("on 3 June 2021"), 0644))
	progressFile := filepath.Join(dir, "out", ".progress.json")

	tracker := NewTracker(progressFile)
	assert.False(t, tracker.IsProcessed(note, "2024-10-29"))

	tracker.MarkSuccess(note, filepath.Join(dir, "out", "note.txt"), "2024-10-29", 1)
	assert.True(t, tracker.IsProcessed(note, "2024-10-29"))
	assert.False(t, tracker.IsProcessed(note, "2025-01-01"), "a new reference date needs a new pass")

	reloaded := NewTracker(progressFile)
	assert.True(t, reloaded.IsProcessed(note, "2024-10-29"))
	success, failed := reloaded.GetStats()
	assert.Equal(t, 1, success)
	assert.Equal(t, 0, failed)
}

func TestTrackerDetectsChangedFile(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(note, []byte("in 2019"), 0644))

	tracker := NewTracker("")
	tracker.MarkSuccess(note, "", "2024-10-29", 1)
	require.True(t, tracker.IsProcessed(note, "2024-10-29"))

	require.NoError(t, os.WriteFile(note, []byte("in 2019 and again in 2020"), 0644))
	assert.False(t, tracker.IsProcessed(note, "2024-10-29"))
}

func TestTrackerClearFailed(t *testing.T) {
	dir := t.TempDir()
	progressFile := filepath.Join(dir, ".progress.json")

	tracker := NewTracker(progressFile)
	tracker.MarkError(filepath.Join(dir, "a.dcm"), "2024-10-29", "could not parse DICOM")
	tracker.MarkError(filepath.Join(dir, "b.dcm"), "2024-10-29", "could not parse DICOM")

	_, failed := tracker.GetStats()
	assert.Equal(t, 2, failed)
	assert.Equal(t, 2, tracker.ClearFailed())
	assert.Equal(t, 0, tracker.ClearFailed())

	_, failed = NewTracker(progressFile).GetStats()
	assert.Equal(t, 0, failed)
}

func TestTrackerIgnoresCorruptFile(t *testing.T) {
	progressFile := filepath.Join(t.TempDir(), ".progress.json")
	require.NoError(t, os.WriteFile(progressFile, []byte("{not json"), 0644))

	tracker := NewTracker(progressFile)
	success, failed := tracker.GetStats()
	assert.Zero(t, success)
	assert.Zero(t, failed)
}

func TestErrorLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "errors.log")

	logger, err := NewErrorLogger(logFile)
	require.NoError(t, err)
	assert.Equal(t, "No errors", logger.Summary())

	logger.Log("/data/notes/a.txt", errors.New("could not read note"))
	logger.Log("/data/scans/b.dcm", errors.New("could not parse DICOM"))
	require.NoError(t, logger.Close())

	assert.Equal(t, 2, logger.ErrorCount())
	assert.Equal(t, "2 errors logged to "+logFile, logger.Summary())
	assert.Equal(t, "/data/notes/a.txt", logger.Entries()[0].File)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "| a.txt | could not read note")
	assert.Contains(t, lines[1], "| b.dcm | could not parse DICOM")
}

func TestErrorLoggerInMemory(t *testing.T) {
	logger, err := NewErrorLogger("")
	require.NoError(t, err)
	logger.Log("x.txt", errors.New("boom"))
	assert.Equal(t, "1 errors", logger.Summary())
	assert.NoError(t, logger.Close())
}
