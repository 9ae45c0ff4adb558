package cmdutils

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-intelligence.com/runtimedeps/util/executil"
)

func TestWrapExecError(t *testing.T) {
	exitErr := &executil.ExitError{
		Args:   []string{"objdump", "-p", "/bin/app"},
		Stderr: "objdump: /bin/app: file format not recognized",
		Err:    errors.New("exit status 1"),
	}
	err := WrapExecError(errors.WithMessage(exitErr, "Failed to run objdump"))

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, exitErr.Stderr, execErr.Stderr)
	assert.Equal(t, exitErr.Args, execErr.Args)

	other := errors.New("other")
	assert.Equal(t, other, WrapExecError(other))
}

func TestSilentError(t *testing.T) {
	err := errors.WithStack(WrapSilentError(errors.New("already printed")))
	var silentErr *SilentError
	assert.True(t, errors.As(err, &silentErr))
	assert.True(t, errors.As(ErrSilent, &silentErr))
}
