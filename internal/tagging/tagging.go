// Package tagging writes metadata tags into audio files.
//
// Open returns a Handle for a file, chosen by extension:
//
//	h, err := tagging.Open("Artist/Discovery (2001)/01 One More Time.mp3")
//	if err != nil {
//	    // errors.Is(err, tagging.ErrUnsupportedFormat) for formats with no writer
//	}
//	defer h.Close()
//	h.Set(tagging.FieldArtist, "Daft Punk")
//	err = h.Save()
//
// MP3 files are written with ID3v2.4 frames; FLAC files with a Vorbis
// comment block. Every other format is reported as unsupported.
package tagging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Open for files with no tag writer.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Field names a tag independently of the container format.
type Field string

const (
	FieldArtist      Field = "artist"
	FieldAlbumArtist Field = "albumartist"
	FieldAlbum       Field = "album"
	FieldYear        Field = "year"
	FieldTrackNumber Field = "tracknumber"
	FieldTitle       Field = "title"
)

// Fields lists every field in display order.
var Fields = []Field{
	FieldArtist,
	FieldAlbumArtist,
	FieldAlbum,
	FieldYear,
	FieldTrackNumber,
	FieldTitle,
}

// Handle is an open tag container for one file. Changes are only written
// by Save.
type Handle interface {
	Set(field Field, value string)
	Save() error
	Close() error
}

// Opener opens tag handles.
type Opener interface {
	Open(path string) (Handle, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Handle, error)

// Open calls f.
func (f OpenerFunc) Open(path string) (Handle, error) {
	return f(path)
}

// DefaultOpener dispatches to the built-in MP3 and FLAC writers.
var DefaultOpener Opener = OpenerFunc(Open)

// Open returns a Handle for path based on its extension.
func Open(path string) (Handle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return openMP3(path)
	case ".flac":
		return openFLAC(path)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}
