package tagging

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

type mp3Handle struct {
	tag *id3v2.Tag
}

func openMP3(path string) (Handle, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)
	return &mp3Handle{tag: tag}, nil
}

func (h *mp3Handle) Set(field Field, value string) {
	switch field {
	case FieldArtist:
		h.tag.SetArtist(value)
	case FieldAlbumArtist:
		h.tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, value)
	case FieldAlbum:
		h.tag.SetAlbum(value)
	case FieldYear:
		// TYER is the v2.3 frame; v2.4 uses TDRC.
		h.tag.DeleteFrames("TYER")
		h.tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, value)
	case FieldTrackNumber:
		h.tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, value)
	case FieldTitle:
		h.tag.SetTitle(value)
	}
}

func (h *mp3Handle) Save() error {
	if err := h.tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

func (h *mp3Handle) Close() error {
	return h.tag.Close()
}
