package cmdutils

import (
	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/util/executil"
)

// ErrSilent is returned when the error has already been printed and the
// command should just exit with a non-zero exit code.
var ErrSilent = WrapSilentError(errors.New("SilentError"))

// SilentError signals that the error was already printed.
type SilentError struct {
	err error
}

func (e SilentError) Error() string {
	return e.err.Error()
}

func (e SilentError) Unwrap() error {
	return e.err
}

func WrapSilentError(err error) error {
	return &SilentError{err}
}

// IncorrectUsageError signals that the usage message of the command
// should be printed after the error.
type IncorrectUsageError struct {
	err error
}

func (e IncorrectUsageError) Error() string {
	return e.err.Error()
}

func (e IncorrectUsageError) Unwrap() error {
	return e.err
}

func WrapIncorrectUsageError(err error) error {
	return &IncorrectUsageError{err}
}

// ExecError is an error of an external command which exited
// unsuccessfully. Its stderr is printed.
type ExecError struct {
	err    error
	Args   []string
	Stderr string
}

func (e ExecError) Error() string {
	return e.err.Error()
}

func (e ExecError) Unwrap() error {
	return e.err
}

// WrapExecError wraps err in an ExecError if it was caused by an
// external command which exited unsuccessfully. Other errors are
// returned unchanged.
func WrapExecError(err error) error {
	var exitErr *executil.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	return &ExecError{err: err, Args: exitErr.Args, Stderr: exitErr.Stderr}
}
