package scan

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the type of document found in an input folder.
type Kind string

const (
	KindNote  Kind = "note"
	KindDicom Kind = "dicom"
)

// File is a document to de-identify.
type File struct {
	Path string
	Kind Kind
}

// DefaultNoteExtensions are the narrative note extensions picked up by default.
var DefaultNoteExtensions = []string{".txt", ".md", ".note"}

// DicomExtensions are common DICOM file extensions
var DicomExtensions = []string{".dcm", ".dicom"}

// ExcludedNames are filenames to skip
var ExcludedNames = map[string]bool{
	"DICOMDIR":       true,
	".progress.json": true,
	".DS_Store":      true,
	"Thumbs.db":      true,
	"desktop.ini":    true,
	"errors.log":     true,
	"README":         true,
	"README.md":      true,
	"LICENSE":        true,
	"CHANGELOG.md":   true,
}

// ExcludedExtensions are file extensions never inspected for DICOM magic bytes
var ExcludedExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".js":   true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".xml":  true,
	".log":  true,
	".csv":  true,
	".exe":  true,
	".dll":  true,
	".so":   true,
	".zip":  true,
	".gz":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".docx": true,
	".html": true,
}

// ExcludedDirs are directory names to skip entirely
var ExcludedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	".idea":        true,
	".vscode":      true,
}

// Options controls what Find returns.
type Options struct {
	Recursive      bool
	Kinds          []Kind   // empty means all kinds
	NoteExtensions []string // empty means DefaultNoteExtensions
	SkipDir        string   // e.g. the output folder when it lives inside the input
}

// Find returns the notes and DICOM files under root, sorted by path.
func Find(root string, opts Options) ([]File, error) {
	noteExts := opts.NoteExtensions
	if len(noteExts) == 0 {
		noteExts = DefaultNoteExtensions
	}
	skipDir := ""
	if opts.SkipDir != "" {
		skipDir = filepath.Clean(opts.SkipDir)
	}

	var files []File

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}

		if info.IsDir() {
			if path != root && (ExcludedDirs[info.Name()] || filepath.Clean(path) == skipDir) {
				return filepath.SkipDir
			}
			// If not recursive and this is a subdirectory, skip it
			if !opts.Recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if ExcludedNames[info.Name()] {
			return nil
		}

		kind, ok := classify(path, noteExts)
		if ok && wanted(kind, opts.Kinds) {
			files = append(files, File{Path: path, Kind: kind})
		}
		return nil
	}

	if err := filepath.Walk(root, walkFn); err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Paths returns the paths of files.
func Paths(files []File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func classify(path string, noteExts []string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))

	for _, ne := range noteExts {
		if ext == strings.ToLower(ne) {
			return KindNote, true
		}
	}
	for _, de := range DicomExtensions {
		if ext == de {
			return KindDicom, true
		}
	}
	if ExcludedExtensions[ext] {
		return "", false
	}
	if HasDicomMagicBytes(path) {
		return KindDicom, true
	}
	return "", false
}

func wanted(kind Kind, kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// HasDicomMagicBytes checks if a file has the DICOM magic bytes ("DICM" at offset 128)
func HasDicomMagicBytes(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, 132)
	if _, err := io.ReadFull(file, header); err != nil {
		return false
	}
	return string(header[128:132]) == "DICM"
}
