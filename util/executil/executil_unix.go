//go:build !windows

package executil

import (
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func (c *Cmd) prepareProcessGroupTermination() {
	if c.SysProcAttr == nil {
		c.SysProcAttr = &syscall.SysProcAttr{}
	}
	// Start the process in a new process group, so that we can
	// terminate it and all of its children
	c.SysProcAttr.Setpgid = true
}

// TerminateProcessGroup sends SIGTERM to the process group of the
// command and SIGKILL if it's still running after a grace period.
func (c *Cmd) TerminateProcessGroup() error {
	if c.Process == nil {
		return nil
	}
	pgid := c.Process.Pid
	err := unix.Kill(-pgid, unix.SIGTERM)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return errors.WithStack(err)
	}

	select {
	case <-c.waitDone:
		return nil
	case <-time.After(processGroupTerminationGracePeriod):
	}

	err = unix.Kill(-pgid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return errors.WithStack(err)
	}
	return nil
}
