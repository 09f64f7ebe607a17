package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the manager executable is not resolvable on PATH.
	ErrNotFound = errors.New("executable not found")

	// ErrChecksumMismatch indicates the downloaded installer failed verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrUnsafePath indicates a removal target that must never be deleted.
	ErrUnsafePath = errors.New("refusing to remove unsafe path")
)

// Error is returned by every failing Adapter operation.
type Error struct {
	Op     string // operation that failed, e.g. "run", "download"
	Detail string // stderr excerpt or path, if any
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}
