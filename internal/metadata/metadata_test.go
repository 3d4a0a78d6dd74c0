package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepfiles/internal/naming"
	"prepfiles/internal/scanner"
	"prepfiles/internal/tagging"
)

func touch(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not really audio data"), 0644))
	return path
}

// memoryHandle records the values set on one file.
type memoryHandle struct {
	path   string
	opener *memoryOpener
	values map[tagging.Field]string
}

func (h *memoryHandle) Set(f tagging.Field, v string) { h.values[f] = v }
func (h *memoryHandle) Save() error {
	h.opener.saved[h.path] = h.values
	return nil
}
func (h *memoryHandle) Close() error { return nil }

type memoryOpener struct {
	saved map[string]map[tagging.Field]string
	fail  map[string]error
}

func newMemoryOpener() *memoryOpener {
	return &memoryOpener{
		saved: make(map[string]map[tagging.Field]string),
		fail:  make(map[string]error),
	}
}

func (o *memoryOpener) Open(path string) (tagging.Handle, error) {
	if err := o.fail[filepath.Base(path)]; err != nil {
		return nil, err
	}
	return &memoryHandle{path: path, opener: o, values: make(map[tagging.Field]string)}, nil
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		file    scanner.AudioFile
		want    TrackTags
		wantErr bool
	}{
		{
			name: "canonical",
			file: audioFile("Daft Punk", "Discovery (2001)", "01 One More Time.mp3"),
			want: TrackTags{Artist: "Daft Punk", Album: "Discovery", Year: 2001, TrackNumber: 1, Title: "One More Time"},
		},
		{
			name: "raw",
			file: audioFile("Daft Punk", "2001 - Discovery", "1 - One More Time.mp3"),
			want: TrackTags{Artist: "Daft Punk", Album: "Discovery", Year: 2001, TrackNumber: 1, Title: "One More Time"},
		},
		{
			name: "artist kept verbatim",
			file: audioFile("  The  Band ", "Live (1999)", "12 Encore.flac"),
			want: TrackTags{Artist: "  The  Band ", Album: "Live", Year: 1999, TrackNumber: 12, Title: "Encore"},
		},
		{
			name: "three digit track",
			file: audioFile("A", "Box (2010)", "104 Hidden.mp3"),
			want: TrackTags{Artist: "A", Album: "Box", Year: 2010, TrackNumber: 104, Title: "Hidden"},
		},
		{
			name: "raw album title starting with a year",
			file: audioFile("A", "2000 - 1999 - Foo", "1 - - Intro.mp3"),
			want: TrackTags{Artist: "A", Album: "1999 - Foo", Year: 2000, TrackNumber: 1, Title: "- Intro"},
		},
		{
			name: "canonical-looking name that reads as raw",
			file: audioFile("A", "1999 - Foo (2000)", "01 - Intro.mp3"),
			want: TrackTags{Artist: "A", Album: "Foo (2000)", Year: 1999, TrackNumber: 1, Title: "Intro"},
		},
		{
			name:    "album does not parse",
			file:    audioFile("A", "Misc", "01 Song.mp3"),
			wantErr: true,
		},
		{
			name:    "track does not parse",
			file:    audioFile("A", "Box (2010)", "Song.mp3"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, naming.ErrNoMatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func audioFile(artist, album, name string) scanner.AudioFile {
	return scanner.AudioFile{
		Entry:    scanner.Entry{Name: name, FullPath: filepath.Join("/music", artist, album, name)},
		Artist:   artist,
		AlbumDir: album,
	}
}

func TestDeriveAndTagWritesDerivedValues(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "Discovery (2001)", "01 One More Time.mp3")
	touch(t, root, "Artist", "Discovery (2001)", "cover.jpg")
	touch(t, root, "Artist", "Misc", "01 Song.mp3")

	opener := newMemoryOpener()
	report, err := DeriveAndTag(root, Options{Opener: opener})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Tagged)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.HasFailures())

	path := filepath.Join(root, "Artist", "Discovery (2001)", "01 One More Time.mp3")
	assert.Equal(t, map[tagging.Field]string{
		tagging.FieldArtist:      "Artist",
		tagging.FieldAlbumArtist: "Artist",
		tagging.FieldAlbum:       "Discovery",
		tagging.FieldYear:        "2001",
		tagging.FieldTrackNumber: "1",
		tagging.FieldTitle:       "One More Time",
	}, opener.saved[path])

	require.Len(t, report.Skips, 1)
	assert.Equal(t, filepath.Join(root, "Artist", "Misc", "01 Song.mp3"), report.Skips[0].Path)
}

func TestDeriveAndTagCollectsFailures(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "Album (2000)", "01 Good.mp3")
	touch(t, root, "Artist", "Album (2000)", "02 Bad.mp3")
	touch(t, root, "Artist", "Album (2000)", "03 Also Good.mp3")

	opener := newMemoryOpener()
	opener.fail["02 Bad.mp3"] = errors.New("disk on fire")

	report, err := DeriveAndTag(root, Options{Opener: opener})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Tagged)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.HasFailures())

	var twe *TagWriteError
	require.Len(t, report.Failures, 1)
	require.ErrorAs(t, report.Failures[0], &twe)
	assert.Equal(t, filepath.Join(root, "Artist", "Album (2000)", "02 Bad.mp3"), twe.Path)
}

func TestDeriveAndTagUnsupportedFormatIsPerFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "Album (2000)", "01 Song.ogg")
	touch(t, root, "Artist", "Album (2000)", "02 Song.mp3")

	report, err := DeriveAndTag(root, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Tagged)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0], tagging.ErrUnsupportedFormat)
}

func TestDeriveAndTagTruncatedFLACIsPerFile(t *testing.T) {
	root := t.TempDir()
	flacPath := filepath.Join(root, "Artist", "Discovery (2001)", "01 One More Time.flac")
	require.NoError(t, os.MkdirAll(filepath.Dir(flacPath), 0755))
	data := append([]byte("fLaC\x80\x00\x00\x22"), make([]byte, 34)...)
	require.NoError(t, os.WriteFile(flacPath, data, 0644))
	touch(t, root, "Artist", "Discovery (2001)", "02 Aerodynamic.mp3")

	var report *TaggingReport
	var err error
	require.NotPanics(t, func() {
		report, err = DeriveAndTag(root, Options{})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Tagged)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	var tagErr *TagWriteError
	require.True(t, errors.As(report.Failures[0], &tagErr))
	assert.Equal(t, flacPath, tagErr.Path)
}

func TestDeriveAndTagRealMP3(t *testing.T) {
	root := t.TempDir()
	path := touch(t, root, "Daft Punk", "2001 - Discovery", "1 - One More Time.mp3")

	report, err := DeriveAndTag(root, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, report.Tagged)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Daft Punk", tag.Artist())
	assert.Equal(t, "Discovery", tag.Album())
	assert.Equal(t, "One More Time", tag.Title())
	assert.Equal(t, "1", tag.GetTextFrame("TRCK").Text)
	assert.Equal(t, "2001", tag.GetTextFrame("TDRC").Text)
}

func TestDeriveAndTagSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "Album (2000)", "01 Song.mp3")

	first, err := DeriveAndTag(root, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Tagged)

	second, err := DeriveAndTag(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Tagged)
	assert.Equal(t, 1, second.Unchanged)
}

func TestDeriveAndTagReportsProgress(t *testing.T) {
	root := t.TempDir()
	for i := 1; i <= 3; i++ {
		touch(t, root, "A", "B (1990)", fmt.Sprintf("%02d T.mp3", i))
	}

	var calls [][2]int
	_, err := DeriveAndTag(root, Options{
		Opener:   newMemoryOpener(),
		Progress: func(done, total int) { calls = append(calls, [2]int{done, total}) },
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestDeriveAndTagMissingRoot(t *testing.T) {
	_, err := DeriveAndTag(filepath.Join(t.TempDir(), "missing"), Options{})
	var se *scanner.ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, scanner.DirectoryNotFound, se.Type)
}

// Feature: metadata, Property 1: raw and canonical layouts derive the same tags
func TestRawAndCanonicalAgree(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("raw and canonical paths derive identical tags", prop.ForAll(
		func(year, track int, album, title string) bool {
			a := naming.AlbumName{Year: year, Title: album}
			tr := naming.TrackName{Number: track, Title: title, Extension: ".mp3"}

			raw := audioFile("Artist", fmt.Sprintf("%d - %s", year, album), fmt.Sprintf("%d - %s.mp3", track, title))
			canonical := audioFile("Artist", a.String(), tr.String())

			fromRaw, err := Derive(raw)
			if err != nil {
				return false
			}
			fromCanonical, err := Derive(canonical)
			if err != nil {
				return false
			}
			return fromRaw == fromCanonical &&
				fromRaw.Year == year && fromRaw.TrackNumber == track &&
				fromRaw.Album == album && fromRaw.Title == title
		},
		gen.IntRange(1000, 9999),
		gen.IntRange(0, 999),
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
