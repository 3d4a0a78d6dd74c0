package tagging

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dhowden/tag"
)

// ReadCurrent returns the tag values currently stored in path. A file
// without tags yields an empty map and no error.
func ReadCurrent(path string) (map[Field]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	current := make(map[Field]string)

	meta, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return current, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}

	current[FieldArtist] = meta.Artist()
	current[FieldAlbumArtist] = meta.AlbumArtist()
	current[FieldAlbum] = meta.Album()
	current[FieldTitle] = meta.Title()
	if year := meta.Year(); year > 0 {
		current[FieldYear] = strconv.Itoa(year)
	}
	if track, _ := meta.Track(); track > 0 {
		current[FieldTrackNumber] = strconv.Itoa(track)
	}

	return current, nil
}
