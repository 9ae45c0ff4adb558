package executil

import (
	"bytes"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/stringutil"
)

const (
	// Duration we wait after sending a SIGTERM to the process group
	// before we send a SIGKILL.
	processGroupTerminationGracePeriod = 5 * time.Second
)

// Cmd provides the same functionality as exec.Cmd but terminates the
// whole process group of the command when a terminating signal is
// received.
type Cmd struct {
	*exec.Cmd
	waitDone  chan struct{}
	signalErr <-chan error
}

func Command(name string, arg ...string) *Cmd {
	return &Cmd{Cmd: exec.Command(name, arg...)}
}

// Does the same as exec.Cmd.Start(), but also registers the signal
// handler which terminates the process group.
func (c *Cmd) Start() error {
	if c.Process != nil {
		return errors.New("exec: already started")
	}

	c.waitDone = make(chan struct{})

	c.prepareProcessGroupTermination()

	// Terminate the process group on terminating signals
	c.signalErr = c.terminateOnSignal()

	err := c.Cmd.Start()
	if err != nil {
		// Stop the signal handler goroutine
		close(c.waitDone)
		<-c.signalErr
		return errors.WithStack(err)
	}
	return nil
}

// Does the same as exec.Cmd.Wait() but also reports errors of the
// signal handler.
func (c *Cmd) Wait() error {
	err := c.Cmd.Wait()
	if c.waitDone != nil {
		close(c.waitDone)
	}

	if c.signalErr != nil {
		signalErr := <-c.signalErr
		// If c.Cmd.Wait returned an error, prefer that.
		// Otherwise, report any error from the signal handler goroutine.
		if signalErr != nil && err == nil {
			err = signalErr
		}
	}

	return errors.WithStack(err)
}

// Same as exec.Cmd.Run() but uses the wrapper methods of this struct.
func (c *Cmd) Run() error {
	err := c.Start()
	if err != nil {
		return err
	}

	return c.Wait()
}

// terminateOnSignal registers a signal handler for terminating signals
// (SIGINT, SIGTERM, SIGQUIT) and starts a goroutine that waits until
// either a terminating signal was received or c.Process.Wait has
// completed (called from Wait).
// When a terminating signal is received, the goroutine terminates the
// process group of c.Process.
//
// terminateOnSignal returns a channel on which its result must be received.
func (c *Cmd) terminateOnSignal() <-chan error {
	errc := make(chan error, 1)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-c.waitDone:
			errc <- nil
		case s := <-sigs:
			log.Debugf("Received %s", s.String())

			// Terminate the command's process group
			err := c.TerminateProcessGroup()
			if err != nil {
				errc <- errors.WithStack(err)
				return
			}

			// Re-raise the signal for other handlers
			signal.Stop(sigs)
			p, err := os.FindProcess(os.Getpid())
			if err != nil {
				errc <- errors.WithStack(err)
				return
			}
			errc <- errors.WithStack(p.Signal(s))
		}
	}()

	return errc
}

// StartError is returned by Output if the process could not be started.
type StartError struct {
	Args []string
	Err  error
}

func (e *StartError) Error() string {
	return "failed to start " + stringutil.QuotedCommand(e.Args) + ": " + e.Err.Error()
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ExitError is returned by Output if the process did not exit
// successfully.
type ExitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := stringutil.QuotedCommand(e.Args) + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner runs the command line args and returns everything the process
// wrote to stdout.
type Runner func(args []string) ([]byte, error)

// Output is the default Runner. It returns a *StartError if the process
// can't be started and an *ExitError if it exits unsuccessfully.
// Stderr of the process is only kept for the error message.
func Output(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	var stdout, stderr bytes.Buffer
	cmd := Command(args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debugf("Command: %s", stringutil.QuotedCommand(args))
	err := cmd.Start()
	if err != nil {
		return nil, errors.WithStack(&StartError{Args: args, Err: err})
	}
	err = cmd.Wait()
	if err != nil {
		return stdout.Bytes(), errors.WithStack(&ExitError{Args: args, Stderr: stderr.String(), Err: err})
	}
	return stdout.Bytes(), nil
}

// FindProgram looks up name in the directories of the PATH environment
// variable and then in extraDirs, in that order.
func FindProgram(name string, extraDirs []string) (string, error) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, nil
	}
	for _, dir := range extraDirs {
		candidates := []string{filepath.Join(dir, name)}
		if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
			candidates = append([]string{filepath.Join(dir, name+".exe")}, candidates...)
		}
		for _, candidate := range candidates {
			if isExecutable(candidate) {
				return candidate, nil
			}
		}
	}
	return "", errors.Wrapf(exec.ErrNotFound, "%s", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
