package orchestrator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepfiles/internal/config"
	"prepfiles/internal/output"
	"prepfiles/internal/prompt"
	"prepfiles/internal/scanner"
)

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte("not really audio data"), 0644))
	return p
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func newConfig(root string) *config.Configuration {
	return &config.Configuration{
		Root:            root,
		AudioExtensions: scanner.DefaultAudioExtensions,
		Color:           output.ColorNever,
	}
}

func run(t *testing.T, cfg *config.Configuration, opts ...Option) (*Summary, string) {
	t.Helper()
	var buf bytes.Buffer
	out := output.New(output.Config{Writer: &buf, ErrWriter: &buf, Color: output.ColorNever, Verbose: cfg.Verbose})
	summary, err := New(cfg, out, opts...).Run()
	require.NoError(t, err)
	return summary, buf.String()
}

func TestApplyEndToEnd(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "2001 - Discovery", "1 - One More Time.mp3")

	cfg := newConfig(root)
	cfg.Apply = true
	cfg.Yes = true

	summary, out := run(t, cfg)
	assert.False(t, summary.HasErrors(), out)

	assert.False(t, exists(filepath.Join(root, "Artist", "2001 - Discovery")))
	renamed := filepath.Join(root, "Artist", "Discovery (2001)", "01 One More Time.mp3")
	require.True(t, exists(renamed), out)

	assert.Equal(t, 2, summary.Rename.Applied)
	assert.Equal(t, 1, summary.Tagging.Tagged)

	tag, err := id3v2.Open(renamed, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	assert.Equal(t, "Artist", tag.Artist())
	assert.Equal(t, "Discovery", tag.Album())
	assert.Equal(t, "2001", tag.GetTextFrame("TDRC").Text)
	assert.Equal(t, "1", tag.GetTextFrame("TRCK").Text)
	assert.Equal(t, "One More Time", tag.Title())

	assert.Contains(t, out, "[OK] Artist/2001 - Discovery -> Artist/Discovery (2001)")
	assert.Contains(t, out, "[OK] updated tags: Artist/Discovery (2001)/01 One More Time.mp3")
}

func TestSecondRunChangesNothing(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "2001 - Discovery", "1 - One More Time.mp3")
	touch(t, root, "Artist", "2001 - Discovery", "2 - Aerodynamic.mp3")

	cfg := newConfig(root)
	cfg.Apply = true
	_, _ = run(t, cfg)

	summary, out := run(t, cfg)
	assert.False(t, summary.HasErrors())
	assert.Equal(t, 0, summary.Rename.Applied)
	assert.Equal(t, 3, summary.Rename.Unchanged)
	assert.Equal(t, 0, summary.Rename.Skipped)
	assert.Equal(t, 0, summary.Tagging.Tagged)
	assert.Equal(t, 2, summary.Tagging.Unchanged)
	assert.Contains(t, out, "Nothing to rename.")
	assert.Contains(t, out, "No metadata updates required.")
}

func TestDeclinedConfirmationLeavesTreeUntouched(t *testing.T) {
	root := t.TempDir()
	src := touch(t, root, "Artist", "1999 - Album", "3 - Song.mp3")

	cfg := newConfig(root)
	cfg.Filenames = true

	summary, out := run(t, cfg, WithConfirmer(prompt.Fixed(false)))
	assert.True(t, exists(src))
	assert.True(t, summary.Rename.Declined)
	assert.False(t, summary.HasErrors())
	assert.Nil(t, summary.Tagging)
	assert.Contains(t, out, "Aborted. No changes applied.")
	assert.Equal(t, "Renames: declined", summary.PrintSummary())
}

func TestInteractiveConfirmationShowsPreview(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "1999 - Album", "3 - Song.mp3")

	var promptOut bytes.Buffer
	confirmer := prompt.NewInteractivePrompter(strings.NewReader("yes\n"), &promptOut)

	cfg := newConfig(root)
	cfg.Filenames = true

	summary, _ := run(t, cfg, WithConfirmer(confirmer))
	assert.Equal(t, 2, summary.Rename.Applied)
	assert.True(t, exists(filepath.Join(root, "Artist", "Album (1999)", "03 Song.mp3")))

	shown := promptOut.String()
	assert.Contains(t, shown, "Preview of planned renames")
	assert.Contains(t, shown, "Artist/1999 - Album -> Artist/Album (1999)")
	assert.Contains(t, shown, "Artist/1999 - Album/3 - Song.mp3 -> Artist/Album (1999)/03 Song.mp3")
	assert.Contains(t, shown, "Total: 2 rename(s)")
	assert.Contains(t, shown, "Apply these changes? [y/N]:")
}

func TestCollisionIsReportedAndNothingOverwritten(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Artist", "2001 - Discovery", "1 - One.mp3")
	existing := touch(t, root, "Artist", "Discovery (2001)", "keep.txt")

	cfg := newConfig(root)
	cfg.Filenames = true
	cfg.Yes = true

	summary, out := run(t, cfg)
	assert.True(t, summary.HasErrors())
	assert.Equal(t, 1, summary.Rename.Collisions)
	assert.True(t, exists(existing))
	assert.True(t, exists(filepath.Join(root, "Artist", "2001 - Discovery")))
	assert.Contains(t, out, "[FAIL]")

	// Tracks inside the colliding folder are still normalized in place.
	assert.True(t, exists(filepath.Join(root, "Artist", "2001 - Discovery", "01 One.mp3")))
}

func TestMetadataOnlyTagsRawTree(t *testing.T) {
	root := t.TempDir()
	path := touch(t, root, "Band", "1985 - Debut", "7 - Hit.mp3")
	touch(t, root, "Band", "Loose Files", "notes.mp3")

	cfg := newConfig(root)
	cfg.Metadata = true
	cfg.Verbose = true

	summary, out := run(t, cfg)
	assert.Nil(t, summary.Rename)
	assert.True(t, exists(path), "metadata mode never renames")
	assert.Equal(t, 1, summary.Tagging.Tagged)
	assert.Equal(t, 1, summary.Tagging.Skipped)
	assert.False(t, summary.HasErrors())

	assert.Contains(t, out, "[SKIP] Band/Loose Files/notes.mp3")
	assert.Contains(t, out, `title: "" -> "Hit"`)
	assert.Equal(t, "Tags: 1 updated, 0 unchanged, 1 skipped, 0 errors", summary.PrintSummary())
}

func TestUnsupportedFormatIsFailure(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Band", "Debut (1985)", "01 Hit.ogg")

	cfg := newConfig(root)
	cfg.Metadata = true

	summary, out := run(t, cfg)
	assert.True(t, summary.HasErrors())
	assert.Equal(t, 1, summary.Tagging.Failed)
	assert.Contains(t, out, "[FAIL] TAG_WRITE_FAILED")
}

func TestMissingRootIsError(t *testing.T) {
	cfg := newConfig(filepath.Join(t.TempDir(), "gone"))
	cfg.Apply = true

	out := output.New(output.Config{Writer: &bytes.Buffer{}, ErrWriter: &bytes.Buffer{}})
	_, err := New(cfg, out).Run()
	var se *scanner.ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, scanner.DirectoryNotFound, se.Type)
}

func TestBuildPlanOrdersAlbumsBeforeTracks(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "A", "2000 - First", "1 - x.mp3")
	touch(t, root, "B", "2001 - Second", "2 - y.mp3")

	plan, errs, err := BuildPlan(root)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, plan.Operations, 4)

	kinds := make([]string, len(plan.Operations))
	for i, op := range plan.Operations {
		kinds[i] = string(op.Kind)
	}
	assert.Equal(t, []string{"album-folder", "album-folder", "track-file", "track-file"}, kinds)
}
