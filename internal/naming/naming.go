// Package naming parses album folder and track file names into structured
// records and serializes them back into canonical form.
package naming

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoMatch is returned when a name does not fit the expected pattern.
var ErrNoMatch = errors.New("name does not match expected pattern")

// separator accepts a hyphen or any of the common dash variants, with
// optional surrounding whitespace.
const separator = `\s*[-\x{2010}\x{2011}\x{2012}\x{2013}\x{2014}\x{2015}]\s*`

var (
	// "YYYY - Album Name"
	albumPattern = regexp.MustCompile(`^\s*(\d{4})` + separator + `(.*)$`)
	// "N - Track Title"
	trackPattern = regexp.MustCompile(`^\s*(\d+)` + separator + `(.*)$`)

	// "Album Name (YYYY)"
	canonicalAlbumPattern = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)$`)
	// "NN Track Title"
	canonicalTrackPattern = regexp.MustCompile(`^(\d{2,}) (.+)$`)
)

const (
	minYear = 1000
	maxYear = 9999
)

// AlbumName is a parsed album folder name.
type AlbumName struct {
	Year  int
	Title string
}

// String returns the canonical folder name "{title} ({year})".
func (a AlbumName) String() string {
	return fmt.Sprintf("%s (%d)", a.Title, a.Year)
}

// TrackName is a parsed track file name. Extension is kept verbatim.
type TrackName struct {
	Number    int
	Title     string
	Extension string
}

// String returns the canonical file name "{NN} {title}{ext}". The number is
// zero-padded to two digits and never truncated.
func (t TrackName) String() string {
	return fmt.Sprintf("%02d %s%s", t.Number, t.Title, t.Extension)
}

// Stem returns the canonical file name without its extension.
func (t TrackName) Stem() string {
	return fmt.Sprintf("%02d %s", t.Number, t.Title)
}

// ParseAlbum parses a folder name of the form "YYYY - Album Name".
func ParseAlbum(name string) (AlbumName, error) {
	m := albumPattern.FindStringSubmatch(name)
	if m == nil {
		return AlbumName{}, fmt.Errorf("album %q: %w", name, ErrNoMatch)
	}

	year, err := parseYear(m[1])
	if err != nil {
		return AlbumName{}, fmt.Errorf("album %q: %w", name, err)
	}

	title := strings.TrimSpace(m[2])
	if title == "" {
		return AlbumName{}, fmt.Errorf("album %q: empty title: %w", name, ErrNoMatch)
	}

	return AlbumName{Year: year, Title: title}, nil
}

// ParseTrack parses a file stem of the form "N - Track Title". ext is the
// original extension including the leading dot, or empty.
func ParseTrack(stem, ext string) (TrackName, error) {
	m := trackPattern.FindStringSubmatch(stem)
	if m == nil {
		return TrackName{}, fmt.Errorf("track %q: %w", stem, ErrNoMatch)
	}

	num, err := strconv.Atoi(m[1])
	if err != nil {
		return TrackName{}, fmt.Errorf("track %q: number out of range: %w", stem, ErrNoMatch)
	}

	title := strings.TrimSpace(m[2])
	if title == "" {
		return TrackName{}, fmt.Errorf("track %q: empty title: %w", stem, ErrNoMatch)
	}

	return TrackName{Number: num, Title: title, Extension: ext}, nil
}

// ParseCanonicalAlbum parses a folder name already in canonical form
// "Album Name (YYYY)". A name that also reads as "YYYY - Album Name" is
// treated as raw input and rejected here.
func ParseCanonicalAlbum(name string) (AlbumName, error) {
	m := canonicalAlbumPattern.FindStringSubmatch(name)
	if m == nil || albumPattern.MatchString(name) {
		return AlbumName{}, fmt.Errorf("album %q: %w", name, ErrNoMatch)
	}

	year, err := parseYear(m[2])
	if err != nil {
		return AlbumName{}, fmt.Errorf("album %q: %w", name, err)
	}

	a := AlbumName{Year: year, Title: strings.TrimSpace(m[1])}
	if a.Title == "" || a.String() != name {
		return AlbumName{}, fmt.Errorf("album %q: %w", name, ErrNoMatch)
	}
	return a, nil
}

// ParseCanonicalTrack parses a file stem already in canonical form
// "NN Track Title".
func ParseCanonicalTrack(stem, ext string) (TrackName, error) {
	m := canonicalTrackPattern.FindStringSubmatch(stem)
	if m == nil || trackPattern.MatchString(stem) {
		return TrackName{}, fmt.Errorf("track %q: %w", stem, ErrNoMatch)
	}

	num, err := strconv.Atoi(m[1])
	if err != nil {
		return TrackName{}, fmt.Errorf("track %q: number out of range: %w", stem, ErrNoMatch)
	}

	t := TrackName{Number: num, Title: m[2], Extension: ext}
	// Rejects over-padded numbers such as "007 Title".
	if t.Stem() != stem || strings.TrimSpace(t.Title) != t.Title {
		return TrackName{}, fmt.Errorf("track %q: %w", stem, ErrNoMatch)
	}
	return t, nil
}

// IsCanonicalAlbum reports whether name is already a canonical album name.
func IsCanonicalAlbum(name string) bool {
	_, err := ParseCanonicalAlbum(name)
	return err == nil
}

// IsCanonicalTrack reports whether stem is already a canonical track stem.
func IsCanonicalTrack(stem string) bool {
	_, err := ParseCanonicalTrack(stem, "")
	return err == nil
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil || year < minYear || year > maxYear {
		return 0, fmt.Errorf("year %q out of range: %w", s, ErrNoMatch)
	}
	return year, nil
}
