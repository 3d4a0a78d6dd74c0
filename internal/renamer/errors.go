package renamer

import (
	"errors"
	"fmt"
)

// ErrCollision is returned when a destination is already taken, either by
// an entry on disk or by another planned rename.
var ErrCollision = errors.New("destination collision")

// ErrAmbiguousName is returned when a raw name would be renamed to a name
// that itself still parses as raw input, so a second run would rename it
// again.
var ErrAmbiguousName = errors.New("canonical name would read back as raw input")

// MoveErrorType represents the type of rename error.
type MoveErrorType string

const (
	// SourceNotFound indicates the source entry does not exist.
	SourceNotFound MoveErrorType = "SOURCE_NOT_FOUND"
	// DestinationExists indicates an entry already exists at the destination.
	DestinationExists MoveErrorType = "DESTINATION_EXISTS"
	// PermissionDenied indicates insufficient permissions for the operation.
	PermissionDenied MoveErrorType = "PERMISSION_DENIED"
	// RenameFailed covers any other failure of the rename call.
	RenameFailed MoveErrorType = "RENAME_FAILED"
)

// MoveError represents an error that occurred while applying a rename.
type MoveError struct {
	Type MoveErrorType
	Path string
	Err  error
}

func (e *MoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// IsCollision reports whether err is a planned or on-disk collision.
func IsCollision(err error) bool {
	return errors.Is(err, ErrCollision)
}
