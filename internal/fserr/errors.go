// Package fserr defines the errors returned by filesystem operations.
//
// Missing paths are reported as ErrNotFound, every other filesystem failure
// as an *IOError wrapping the cause.
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("path does not exist")
	// ErrIsDirectory is returned when an operation that only handles files is given a directory.
	ErrIsDirectory = errors.New("is a directory")
	// ErrInvalidName is returned for names that cannot be used as a single path element.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidDepth is returned for negative traversal depths.
	ErrInvalidDepth = errors.New("depth cannot be negative")
)

// IOError wraps a filesystem failure together with the operation and path that caused it.
type IOError struct {
	// Op is the operation that failed, e.g. "stat" or "readdir".
	Op string
	// Path is the path the operation was applied to.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// NotFound returns ErrNotFound annotated with path.
func NotFound(path string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Classify maps a raw filesystem error onto ErrNotFound or *IOError.
// A nil err yields nil.
func Classify(op, path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return NotFound(path)
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}

	return &IOError{Op: op, Path: path, Err: err}
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIO reports whether err is or wraps an *IOError.
func IsIO(err error) bool {
	var ioErr *IOError

	return errors.As(err, &ioErr)
}
