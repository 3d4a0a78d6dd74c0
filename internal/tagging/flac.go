package tagging

import (
	"fmt"
	"strings"

	flac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"
)

var vorbisKeys = map[Field]string{
	FieldArtist:      flacvorbis.FIELD_ARTIST,
	FieldAlbumArtist: "ALBUMARTIST",
	FieldAlbum:       flacvorbis.FIELD_ALBUM,
	FieldYear:        flacvorbis.FIELD_DATE,
	FieldTrackNumber: flacvorbis.FIELD_TRACKNUMBER,
	FieldTitle:       flacvorbis.FIELD_TITLE,
}

type flacHandle struct {
	path    string
	file    *flac.File
	comment *flacvorbis.MetaDataBlockVorbisComment
	index   int // position of the existing comment block in file.Meta, or -1
}

// openFLAC parses path into memory. go-flac indexes into the audio frames
// without a length check, so a file with metadata but no frames panics; that
// is reported as a parse error for this file only.
func openFLAC(path string) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h = nil
			err = fmt.Errorf("failed to parse FLAC file: %v", r)
		}
	}()

	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	fh := &flacHandle{path: path, file: f, index: -1}
	for i, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Vorbis comment: %w", err)
		}
		fh.comment = cmt
		fh.index = i
		break
	}
	if fh.comment == nil {
		fh.comment = flacvorbis.New()
	}
	return fh, nil
}

// Set replaces every existing value of the field's Vorbis key.
func (h *flacHandle) Set(field Field, value string) {
	key, ok := vorbisKeys[field]
	if !ok {
		return
	}

	prefix := key + "="
	kept := h.comment.Comments[:0]
	for _, c := range h.comment.Comments {
		if len(c) >= len(prefix) && strings.EqualFold(c[:len(prefix)], prefix) {
			continue
		}
		kept = append(kept, c)
	}
	h.comment.Comments = kept

	if value != "" {
		_ = h.comment.Add(key, value)
	}
}

func (h *flacHandle) Save() error {
	block := h.comment.Marshal()
	if h.index >= 0 {
		h.file.Meta[h.index] = &block
	} else {
		h.file.Meta = append(h.file.Meta, &block)
		h.index = len(h.file.Meta) - 1
	}

	if err := h.file.Save(h.path); err != nil {
		return fmt.Errorf("failed to save FLAC file with metadata: %w", err)
	}
	return nil
}

func (h *flacHandle) Close() error {
	return nil
}
