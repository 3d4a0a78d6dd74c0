// Package renamer plans and applies canonical renames of album folders and
// track files.
package renamer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"prepfiles/internal/naming"
	"prepfiles/internal/scanner"
)

// Kind distinguishes album folder renames from track file renames.
type Kind string

const (
	KindAlbum Kind = "album-folder"
	KindTrack Kind = "track-file"
)

// Operation is a single planned rename within one parent directory.
// Parent is the directory as it was named at planning time.
type Operation struct {
	Kind            Kind
	Parent          string
	SourceName      string
	DestinationName string
}

// SourcePath returns the planned source path.
func (o Operation) SourcePath() string {
	return filepath.Join(o.Parent, o.SourceName)
}

// DestinationPath returns the planned destination path.
func (o Operation) DestinationPath() string {
	return filepath.Join(o.Parent, o.DestinationName)
}

// Conflict is an operation excluded from the plan because its destination
// is already taken.
type Conflict struct {
	Operation
	With string // Path of the entry or planned source that owns the destination
	Err  error
}

// Skip is a name that did not match the expected pattern.
type Skip struct {
	Kind Kind
	Path string
	Err  error
}

// Plan is the ordered set of renames computed before any mutation, together
// with the names that were skipped or excluded.
type Plan struct {
	Operations []Operation
	Conflicts  []Conflict
	Skipped    []Skip
	Unchanged  int
}

// Merge appends other to p, keeping order.
func (p *Plan) Merge(other *Plan) {
	if other == nil {
		return
	}
	p.Operations = append(p.Operations, other.Operations...)
	p.Conflicts = append(p.Conflicts, other.Conflicts...)
	p.Skipped = append(p.Skipped, other.Skipped...)
	p.Unchanged += other.Unchanged
}

// Empty reports whether the plan has nothing to execute.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}

// PlanAlbumRenames scans the immediate subdirectories of parent and plans a
// rename for every "YYYY - Title" folder into "Title (YYYY)".
func PlanAlbumRenames(parent string) (*Plan, error) {
	dirs, err := scanner.ListDirs(parent)
	if err != nil {
		return nil, err
	}

	return planDirectory(parent, KindAlbum, dirs, func(name string) (string, bool, error) {
		album, err := naming.ParseAlbum(name)
		if err != nil {
			if naming.IsCanonicalAlbum(name) {
				return name, true, nil
			}
			return "", false, err
		}
		dest := album.String()
		if !naming.IsCanonicalAlbum(dest) {
			return "", false, fmt.Errorf("album %q -> %q: %w", name, dest, ErrAmbiguousName)
		}
		return dest, false, nil
	})
}

// PlanTrackRenames scans the regular files of albumDir and plans a rename
// for every "N - Title.ext" file into "NN Title.ext".
func PlanTrackRenames(albumDir string) (*Plan, error) {
	files, err := scanner.ListFiles(albumDir)
	if err != nil {
		return nil, err
	}

	return planDirectory(albumDir, KindTrack, files, func(name string) (string, bool, error) {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		track, err := naming.ParseTrack(stem, ext)
		if err != nil {
			if naming.IsCanonicalTrack(stem) {
				return name, true, nil
			}
			return "", false, err
		}
		if !naming.IsCanonicalTrack(track.Stem()) {
			return "", false, fmt.Errorf("track %q -> %q: %w", name, track.String(), ErrAmbiguousName)
		}
		return track.String(), false, nil
	})
}

// canonicalFunc returns the canonical name for name, whether name was
// already canonical, or a parse error.
type canonicalFunc func(name string) (string, bool, error)

// planDirectory builds the plan for one parent directory. Destinations
// already present on disk, or claimed by an earlier entry, are conflicts.
func planDirectory(parent string, kind Kind, entries []scanner.Entry, canonical canonicalFunc) (*Plan, error) {
	existing, err := scanner.ListNames(parent)
	if err != nil {
		return nil, err
	}
	onDisk := make(map[string]bool, len(existing))
	for _, name := range existing {
		onDisk[name] = true
	}

	plan := &Plan{}
	claimed := make(map[string]string) // destination name -> source name
	for _, entry := range entries {
		dest, unchanged, err := canonical(entry.Name)
		if err != nil {
			plan.Skipped = append(plan.Skipped, Skip{Kind: kind, Path: entry.FullPath, Err: err})
			continue
		}
		if unchanged || dest == entry.Name {
			plan.Unchanged++
			continue
		}

		op := Operation{Kind: kind, Parent: parent, SourceName: entry.Name, DestinationName: dest}
		if owner, ok := claimed[dest]; ok {
			plan.Conflicts = append(plan.Conflicts, Conflict{
				Operation: op,
				With:      filepath.Join(parent, owner),
				Err:       fmt.Errorf("%s also maps to %q: %w", owner, dest, ErrCollision),
			})
			continue
		}
		if onDisk[dest] {
			plan.Conflicts = append(plan.Conflicts, Conflict{
				Operation: op,
				With:      op.DestinationPath(),
				Err:       fmt.Errorf("%q already exists: %w", dest, ErrCollision),
			})
			continue
		}

		claimed[dest] = entry.Name
		plan.Operations = append(plan.Operations, op)
	}

	return plan, nil
}

// Preview renders the plan as a human-readable listing with paths relative
// to root. Track destinations are shown under their album's new name.
func (p *Plan) Preview(root string) string {
	var b strings.Builder

	if p.Empty() && len(p.Conflicts) == 0 {
		b.WriteString("No matching folders/files found. Nothing to rename.\n")
		return b.String()
	}

	moved := make(map[string]string)
	for _, op := range p.Operations {
		if op.Kind == KindAlbum {
			moved[op.SourcePath()] = op.DestinationPath()
		}
	}

	var folders, files []string
	for _, op := range p.Operations {
		dest := op.DestinationPath()
		if np, ok := moved[op.Parent]; ok {
			dest = filepath.Join(np, op.DestinationName)
		}
		line := fmt.Sprintf("  %s -> %s", rel(root, op.SourcePath()), rel(root, dest))
		if op.Kind == KindAlbum {
			folders = append(folders, line)
		} else {
			files = append(files, line)
		}
	}
	sort.Strings(folders)
	sort.Strings(files)

	b.WriteString("Preview of planned renames\n")
	b.WriteString(strings.Repeat("=", 26) + "\n")
	if len(folders) > 0 {
		b.WriteString("\nFolders:\n")
		b.WriteString(strings.Join(folders, "\n") + "\n")
	}
	if len(files) > 0 {
		b.WriteString("\nFiles:\n")
		b.WriteString(strings.Join(files, "\n") + "\n")
	}
	if len(p.Conflicts) > 0 {
		b.WriteString("\nConflicts (will not be renamed):\n")
		for _, c := range p.Conflicts {
			fmt.Fprintf(&b, "  %s -> %s (taken by %s)\n",
				rel(root, c.SourcePath()), c.DestinationName, rel(root, c.With))
		}
	}
	fmt.Fprintf(&b, "\nTotal: %d rename(s)\n", len(p.Operations))

	return b.String()
}

func rel(root, path string) string {
	if root == "" {
		return path
	}
	r, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return r
}
