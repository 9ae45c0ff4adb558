package executil

import (
	"github.com/pkg/errors"
)

func (c *Cmd) prepareProcessGroupTermination() {}

// TerminateProcessGroup kills the process. Windows has no process
// groups which could be signaled, the introspection tools we run don't
// spawn children.
func (c *Cmd) TerminateProcessGroup() error {
	if c.Process == nil {
		return nil
	}
	return errors.WithStack(c.Process.Kill())
}
