package cli

import (
	"errors"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the exit code a failed command should end with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

// userErrors are store errors caused by bad input rather than a fault.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrMissingID,
	types.ErrInvalidType,
	types.ErrInvalidKey,
	types.ErrInvalidRange,
	types.ErrDuplicateKey,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
}

// storeError classifies an error returned by the store or notebook.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// exitCode maps err to a process exit code. Errors not classified by a
// command, such as cobra argument errors, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
