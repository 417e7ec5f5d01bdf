package progress

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStatus represents the processing status of a file
type FileStatus string

const (
	StatusSuccess FileStatus = "success"
	StatusError   FileStatus = "error"
)

// FileEntry represents a processed file entry
type FileEntry struct {
	Status    FileStatus `json:"status"`
	Hash      string     `json:"hash"`
	Reference string     `json:"reference"`
	Output    string     `json:"output,omitempty"`
	Spans     int        `json:"spans"`
	Error     string     `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// TrackerData is the JSON structure for persistence
type TrackerData struct {
	Files   map[string]*FileEntry `json:"files"`
	Updated string                `json:"updated"`
	Summary struct {
		Success int `json:"success"`
		Error   int `json:"error"`
		Spans   int `json:"spans"`
		Total   int `json:"total"`
	} `json:"summary"`
}

// Tracker records which documents were already de-identified so an
// interrupted run can resume. A document counts as done only for the same
// content and the same reference date.
type Tracker struct {
	mu           sync.Mutex
	progressFile string
	processed    map[string]*FileEntry
}

// NewTracker creates a new progress tracker, loading progressFile if it exists.
func NewTracker(progressFile string) *Tracker {
	t := &Tracker{
		progressFile: progressFile,
		processed:    make(map[string]*FileEntry),
	}

	if progressFile != "" {
		t.load()
	}

	return t
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.progressFile)
	if err != nil {
		return // File doesn't exist, start fresh
	}

	var trackerData TrackerData
	if err := json.Unmarshal(data, &trackerData); err != nil {
		fmt.Printf("Warning: Could not load progress file: %v\n", err)
		return
	}

	if trackerData.Files != nil {
		t.processed = trackerData.Files
	}
}

func (t *Tracker) save() {
	if t.progressFile == "" {
		return
	}

	trackerData := TrackerData{
		Files:   t.processed,
		Updated: time.Now().Format(time.RFC3339),
	}
	trackerData.Summary.Success = t.countStatus(StatusSuccess)
	trackerData.Summary.Error = t.countStatus(StatusError)
	trackerData.Summary.Total = len(t.processed)
	for _, entry := range t.processed {
		trackerData.Summary.Spans += entry.Spans
	}

	data, err := json.MarshalIndent(trackerData, "", "  ")
	if err != nil {
		fmt.Printf("Warning: Could not marshal progress data: %v\n", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(t.progressFile), 0755); err != nil {
		fmt.Printf("Warning: Could not create progress directory: %v\n", err)
		return
	}
	if err := os.WriteFile(t.progressFile, data, 0644); err != nil {
		fmt.Printf("Warning: Could not save progress: %v\n", err)
	}
}

func (t *Tracker) countStatus(status FileStatus) int {
	count := 0
	for _, entry := range t.processed {
		if entry.Status == status {
			count++
		}
	}
	return count
}

// fileHash creates a quick hash based on file size and modification time
func fileHash(filePath string) string {
	info, err := os.Stat(filePath)
	if err != nil {
		return ""
	}
	hashInput := fmt.Sprintf("%d_%d", info.Size(), info.ModTime().UnixNano())
	hash := md5.Sum([]byte(hashInput))
	return fmt.Sprintf("%x", hash[:4])
}

// IsProcessed reports whether filePath was de-identified successfully
// against reference and has not changed since.
func (t *Tracker) IsProcessed(filePath, reference string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.processed[filePath]
	if !ok || entry.Status != StatusSuccess || entry.Reference != reference {
		return false
	}
	return entry.Hash == fileHash(filePath)
}

// MarkSuccess marks a file as successfully processed.
func (t *Tracker) MarkSuccess(filePath, outputPath, reference string, spans int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed[filePath] = &FileEntry{
		Status:    StatusSuccess,
		Hash:      fileHash(filePath),
		Reference: reference,
		Output:    outputPath,
		Spans:     spans,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	t.save()
}

// MarkError marks a file as failed.
func (t *Tracker) MarkError(filePath, reference, errorMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed[filePath] = &FileEntry{
		Status:    StatusError,
		Hash:      fileHash(filePath),
		Reference: reference,
		Error:     errorMsg,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	t.save()
}

// ClearFailed removes all failed entries for retry and returns how many were removed.
func (t *Tracker) ClearFailed() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for key, entry := range t.processed {
		if entry.Status == StatusError {
			delete(t.processed, key)
			count++
		}
	}

	if count > 0 {
		t.save()
	}

	return count
}

// GetStats returns success and error counts.
func (t *Tracker) GetStats() (success, errors int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countStatus(StatusSuccess), t.countStatus(StatusError)
}
