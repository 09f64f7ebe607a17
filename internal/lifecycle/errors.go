package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrPrerequisiteNotMet indicates the shell has not been initialized for
	// the manager.
	ErrPrerequisiteNotMet = errors.New("package manager shell integration is not initialized")

	// ErrDeclined indicates the user declined a required confirmation.
	ErrDeclined = errors.New("declined by user")
)

// ExitError ends a session with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func (e *ExitError) ExitCode() int {
	return e.Code
}

func exitWith(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}
