package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptState is returned when a settings file exists but cannot be decoded
	// into a valid record.
	ErrCorruptState = errors.New("settings: corrupt state")
	// ErrTemplateNotFound is returned when no bundled template is available.
	ErrTemplateNotFound = errors.New("settings: bundled template not found")
	// ErrBackupNotFound is returned when the first-write backup does not exist.
	ErrBackupNotFound = errors.New("settings: backup not found")
)

// IOError reports a failed file operation on a settings path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("settings: failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOFailure returns true if err came from a failed file operation.
// Corrupt state counts as an I/O failure.
func IsIOFailure(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr) || IsCorrupt(err)
}

// IsCorrupt returns true if err reports an undecodable settings file.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptState)
}
