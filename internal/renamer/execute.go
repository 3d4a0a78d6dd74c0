package renamer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"prepfiles/internal/prompt"
)

// Result is the outcome of applying one operation. Source and Destination
// are the paths actually used, after resolving renamed parents.
type Result struct {
	Operation
	Source      string
	Destination string
	Err         error
}

// ExecutionReport aggregates the outcome of executing a plan.
type ExecutionReport struct {
	Declined   bool     // Confirmation was refused; nothing was applied
	Applied    int      // Renames committed to disk
	Skipped    int      // Names that did not match a pattern
	Unchanged  int      // Names already canonical
	Collisions int      // Planned or on-disk destination collisions
	Failed     int      // Other filesystem errors
	Results    []Result // One per executed operation, in order
	Conflicts  []Conflict
	Skips      []Skip
}

// HasFailures reports whether any operation collided or failed.
func (r *ExecutionReport) HasFailures() bool {
	return r.Collisions > 0 || r.Failed > 0
}

// ExecuteOptions controls Execute.
type ExecuteOptions struct {
	// Confirm gates the whole plan behind a single yes/no answer.
	Confirm bool
	// Confirmer answers the gate. Required when Confirm is set.
	Confirmer prompt.Confirmer
	// Root is used to render the preview with relative paths.
	Root string
}

// Execute applies plan in order. Album operations must come before the track
// operations planned inside them; a track's parent is resolved to the
// album's committed path. Failures are collected, never fatal to the batch.
func Execute(plan *Plan, opts ExecuteOptions) (*ExecutionReport, error) {
	report := &ExecutionReport{
		Skipped:    len(plan.Skipped),
		Unchanged:  plan.Unchanged,
		Collisions: len(plan.Conflicts),
		Conflicts:  plan.Conflicts,
		Skips:      plan.Skipped,
	}

	if opts.Confirm && !plan.Empty() {
		if opts.Confirmer == nil {
			return nil, errors.New("confirmation requested without a confirmer")
		}
		ok, err := opts.Confirmer.Confirm(plan.Preview(opts.Root))
		if err != nil {
			return nil, fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			report.Declined = true
			return report, nil
		}
	}

	moved := make(map[string]string) // committed album source -> destination
	for _, op := range plan.Operations {
		parent := op.Parent
		if np, ok := moved[parent]; ok {
			parent = np
		}
		src := filepath.Join(parent, op.SourceName)
		dst := filepath.Join(parent, op.DestinationName)

		err := Rename(src, dst)
		report.Results = append(report.Results, Result{
			Operation:   op,
			Source:      src,
			Destination: dst,
			Err:         err,
		})

		switch {
		case err == nil:
			report.Applied++
			if op.Kind == KindAlbum {
				moved[op.SourcePath()] = dst
			}
		case IsCollision(err):
			report.Collisions++
		default:
			report.Failed++
		}
	}

	return report, nil
}

// Rename moves src to dst with a single rename call. It never replaces an
// existing entry: if dst exists the rename is refused with DestinationExists.
func Rename(src, dst string) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return classifyRenameError(src, err)
	}

	if dstInfo, err := os.Lstat(dst); err == nil {
		// Case-only renames on case-insensitive filesystems see themselves.
		if !os.SameFile(srcInfo, dstInfo) {
			return &MoveError{Type: DestinationExists, Path: dst, Err: ErrCollision}
		}
	} else if !os.IsNotExist(err) {
		return classifyRenameError(dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		return classifyRenameError(src, err)
	}
	return nil
}

func classifyRenameError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &MoveError{Type: SourceNotFound, Path: path, Err: err}
	case os.IsExist(err):
		return &MoveError{Type: DestinationExists, Path: path, Err: fmt.Errorf("%v: %w", err, ErrCollision)}
	case os.IsPermission(err):
		return &MoveError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return &MoveError{Type: RenameFailed, Path: path, Err: err}
	}
}
