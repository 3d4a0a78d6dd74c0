// Package metadata derives tag values from the Artist/Album (YYYY)/NN Title.ext
// layout and writes them into the audio files.
package metadata

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"prepfiles/internal/naming"
	"prepfiles/internal/scanner"
	"prepfiles/internal/tagging"
)

// TrackTags are the values derived from one file's path.
type TrackTags struct {
	Artist      string
	Album       string
	Year        int
	TrackNumber int
	Title       string
}

// Values returns the tag fields to write, keyed by field.
func (t TrackTags) Values() map[tagging.Field]string {
	return map[tagging.Field]string{
		tagging.FieldArtist:      t.Artist,
		tagging.FieldAlbumArtist: t.Artist,
		tagging.FieldAlbum:       t.Album,
		tagging.FieldYear:        strconv.Itoa(t.Year),
		tagging.FieldTrackNumber: strconv.Itoa(t.TrackNumber),
		tagging.FieldTitle:       t.Title,
	}
}

// Change is one field whose stored value differs from the derived one.
type Change struct {
	Field tagging.Field
	From  string
	To    string
}

// Update records the tags written, or that would have been written, to one file.
type Update struct {
	Path    string
	Tags    TrackTags
	Changes []Change
}

// Skip is a file whose album or track segment did not parse.
type Skip struct {
	Path string
	Err  error
}

// TagWriteError wraps a failure to open or save one file's tags.
type TagWriteError struct {
	Path string
	Err  error
}

func (e *TagWriteError) Error() string {
	return fmt.Sprintf("TAG_WRITE_FAILED: %s (%v)", e.Path, e.Err)
}

func (e *TagWriteError) Unwrap() error {
	return e.Err
}

// TaggingReport aggregates the outcome of a metadata run.
type TaggingReport struct {
	Tagged    int      // Files whose tags were written
	Unchanged int      // Files whose tags already matched
	Skipped   int      // Files whose path did not parse
	Failed    int      // Tag write failures and unreadable directories
	Updates   []Update // One per tagged file
	Skips     []Skip
	Failures  []error
}

// HasFailures reports whether any file or directory failed.
func (r *TaggingReport) HasFailures() bool {
	return r.Failed > 0
}

// Options controls DeriveAndTag.
type Options struct {
	Opener   tagging.Opener        // Defaults to tagging.DefaultOpener
	Filter   *scanner.AudioFilter  // Defaults to scanner.DefaultAudioExtensions
	Progress func(done, total int) // Called after each file, if set
}

// Derive parses an audio file's artist, album and track segments.
// The artist directory name is used verbatim.
func Derive(file scanner.AudioFile) (TrackTags, error) {
	album, err := parseAlbumSegment(file.AlbumDir)
	if err != nil {
		return TrackTags{}, err
	}

	ext := filepath.Ext(file.Name)
	track, err := parseTrackSegment(strings.TrimSuffix(file.Name, ext), ext)
	if err != nil {
		return TrackTags{}, err
	}

	return TrackTags{
		Artist:      file.Artist,
		Album:       album.Title,
		Year:        album.Year,
		TrackNumber: track.Number,
		Title:       track.Title,
	}, nil
}

// parseAlbumSegment accepts the canonical "Title (YYYY)" form and falls back
// to the raw "YYYY - Title" form.
func parseAlbumSegment(name string) (naming.AlbumName, error) {
	if a, err := naming.ParseCanonicalAlbum(name); err == nil {
		return a, nil
	}
	return naming.ParseAlbum(name)
}

func parseTrackSegment(stem, ext string) (naming.TrackName, error) {
	if t, err := naming.ParseCanonicalTrack(stem, ext); err == nil {
		return t, nil
	}
	return naming.ParseTrack(stem, ext)
}

// DeriveAndTag walks root and writes derived tags into every audio file at
// Artist/Album/File depth. Parse mismatches are skipped and tag failures are
// collected; neither stops the walk. Only an unreadable root is returned as
// an error.
func DeriveAndTag(root string, opts Options) (*TaggingReport, error) {
	if opts.Opener == nil {
		opts.Opener = tagging.DefaultOpener
	}
	if opts.Filter == nil {
		opts.Filter = scanner.NewAudioFilter(scanner.DefaultAudioExtensions)
	}

	walk, err := scanner.WalkAudio(root, opts.Filter)
	if err != nil {
		return nil, err
	}

	report := &TaggingReport{}
	for _, werr := range walk.Errors {
		report.Failed++
		report.Failures = append(report.Failures, werr)
	}

	total := len(walk.Files)
	for i, file := range walk.Files {
		tagFile(file, opts.Opener, report)
		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
	}

	return report, nil
}

func tagFile(file scanner.AudioFile, opener tagging.Opener, report *TaggingReport) {
	tags, err := Derive(file)
	if err != nil {
		report.Skipped++
		report.Skips = append(report.Skips, Skip{Path: file.FullPath, Err: err})
		return
	}

	changes := diff(file.FullPath, tags)
	if len(changes) == 0 {
		report.Unchanged++
		return
	}

	if err := write(opener, file.FullPath, tags); err != nil {
		report.Failed++
		report.Failures = append(report.Failures, &TagWriteError{Path: file.FullPath, Err: err})
		return
	}

	report.Tagged++
	report.Updates = append(report.Updates, Update{Path: file.FullPath, Tags: tags, Changes: changes})
}

// diff compares the derived values with what the file holds now. If the
// current tags cannot be read every field counts as changed.
func diff(path string, tags TrackTags) []Change {
	current, err := tagging.ReadCurrent(path)
	if err != nil {
		current = nil
	}

	want := tags.Values()
	var changes []Change
	for _, f := range tagging.Fields {
		if current[f] != want[f] {
			changes = append(changes, Change{Field: f, From: current[f], To: want[f]})
		}
	}
	return changes
}

func write(opener tagging.Opener, path string, tags TrackTags) error {
	h, err := opener.Open(path)
	if err != nil {
		return err
	}
	defer h.Close()

	values := tags.Values()
	for _, f := range tagging.Fields {
		h.Set(f, values[f])
	}
	return h.Save()
}
