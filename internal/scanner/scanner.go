// Package scanner handles directory listing for prepfiles.
package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// NotADirectory indicates the path exists but is not a directory.
	NotADirectory ScanErrorType = "NOT_A_DIRECTORY"
	// PermissionDenied indicates insufficient permissions to read the directory.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// DefaultAudioExtensions lists the extensions treated as audio files.
var DefaultAudioExtensions = []string{
	".aac", ".aiff", ".alac", ".ape", ".flac", ".m4a", ".mp3",
	".mp4", ".ogg", ".oga", ".opus", ".wav", ".wma",
}

// Entry represents a directory entry found during scanning.
type Entry struct {
	Name     string // Base name only
	FullPath string // Absolute path
}

// AudioFile is an audio file found at Artist/Album/File depth.
type AudioFile struct {
	Entry
	Artist   string // Name of the depth-1 directory
	AlbumDir string // Name of the depth-2 directory
}

// WalkResult holds the audio files found by WalkAudio and any
// subdirectories that could not be read.
type WalkResult struct {
	Files  []AudioFile
	Errors []error
}

// AudioFilter matches file names against a set of extensions, ignoring case.
type AudioFilter struct {
	exts map[string]struct{}
}

// NewAudioFilter builds a filter from extensions such as ".mp3".
// Entries without a leading dot are accepted.
func NewAudioFilter(extensions []string) *AudioFilter {
	f := &AudioFilter{exts: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.exts[ext] = struct{}{}
	}
	return f
}

// Match reports whether name has one of the filter's extensions.
func (f *AudioFilter) Match(name string) bool {
	_, ok := f.exts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ListDirs returns the immediate subdirectories of directory in name order.
// Symlinks are skipped.
func ListDirs(directory string) ([]Entry, error) {
	return list(directory, func(info os.FileInfo) bool { return info.IsDir() })
}

// ListFiles returns the immediate regular files of directory in name order.
// Symlinks are skipped.
func ListFiles(directory string) ([]Entry, error) {
	return list(directory, func(info os.FileInfo) bool { return info.Mode().IsRegular() })
}

// WalkAudio walks root expecting Artist/Album/File and returns the audio
// files found at exactly that depth. Files at other depths and files the
// filter rejects are skipped silently. Only a failure to read root itself is
// returned as an error; unreadable subdirectories are collected in the result.
func WalkAudio(root string, filter *AudioFilter) (*WalkResult, error) {
	artists, err := ListDirs(root)
	if err != nil {
		return nil, err
	}

	result := &WalkResult{}
	for _, artist := range artists {
		albums, err := ListDirs(artist.FullPath)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		for _, album := range albums {
			files, err := ListFiles(album.FullPath)
			if err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			for _, file := range files {
				if !filter.Match(file.Name) {
					continue
				}
				result.Files = append(result.Files, AudioFile{
					Entry:    file,
					Artist:   artist.Name,
					AlbumDir: album.Name,
				})
			}
		}
	}

	return result, nil
}

// CheckDirectory verifies that directory exists and is a directory.
func CheckDirectory(directory string) error {
	info, err := os.Stat(directory)
	if err != nil {
		return classify(directory, err)
	}
	if !info.IsDir() {
		return &ScanError{
			Type: NotADirectory,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}
	return nil
}

func list(directory string, keep func(os.FileInfo) bool) ([]Entry, error) {
	if err := CheckDirectory(directory); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, classify(directory, err)
	}

	var out []Entry
	for _, entry := range entries {
		fullPath := filepath.Join(directory, entry.Name())
		absPath, err := filepath.Abs(fullPath)
		if err != nil {
			absPath = fullPath
		}

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue // Skip entries we can't stat
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if !keep(info) {
			continue
		}

		out = append(out, Entry{
			Name:     entry.Name(),
			FullPath: absPath,
		})
	}

	return out, nil
}

func classify(path string, err error) error {
	if os.IsNotExist(err) {
		return &ScanError{Type: DirectoryNotFound, Path: path, Err: err}
	}
	if os.IsPermission(err) {
		return &ScanError{Type: PermissionDenied, Path: path, Err: err}
	}
	return err
}

// ListNames returns the names of every entry in directory, whatever its type.
func ListNames(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, classify(directory, err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Name())
	}
	return out, nil
}
