// Package tools wraps the binary introspection tools (objdump, otool,
// dumpbin) and extracts the dynamic linking information of a file from
// their text output.
package tools

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/util/executil"
)

// Stage describes at which point running a tool failed.
type Stage string

const (
	StageStart Stage = "start"
	StageExit  Stage = "exit"
	StageParse Stage = "parse"
)

// Error is returned when a tool couldn't be started, exited
// unsuccessfully or produced output which couldn't be parsed.
type Error struct {
	Tool  string
	File  string
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	switch e.Stage {
	case StageStart:
		return fmt.Sprintf("Failed to start %s process for:\n  %s", e.Tool, e.File)
	case StageExit:
		return fmt.Sprintf("Failed to run %s on:\n  %s", e.Tool, e.File)
	default:
		return fmt.Sprintf("Invalid output from %s:\n  %s", e.Tool, e.File)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ELFFileInfo is the dynamic section of an ELF file.
type ELFFileInfo struct {
	Needed   []string
	RPaths   []string
	RunPaths []string
}

// MachOFileInfo holds the load commands of a Mach-O file relevant for
// dynamic linking.
type MachOFileInfo struct {
	Libs   []string
	RPaths []string
}

type ELFTool interface {
	GetFileInfo(file string) (*ELFFileInfo, error)
}

type MachOTool interface {
	GetFileInfo(file string) (*MachOFileInfo, error)
}

// PETool returns the names of the DLLs imported by a PE file.
type PETool interface {
	GetFileInfo(file string) ([]string, error)
}

// run executes command (a program followed by its leading arguments)
// with args and file appended and returns stdout.
func run(runner executil.Runner, tool string, command []string, file string, args ...string) (string, error) {
	if len(command) == 0 {
		return "", errors.WithStack(&Error{Tool: tool, File: file, Stage: StageStart, Err: errors.New("empty command")})
	}
	if runner == nil {
		runner = executil.Output
	}
	cmdline := make([]string, 0, len(command)+len(args)+1)
	cmdline = append(cmdline, command...)
	cmdline = append(cmdline, args...)
	cmdline = append(cmdline, file)

	out, err := runner(cmdline)
	if err != nil {
		var startErr *executil.StartError
		if errors.As(err, &startErr) {
			return "", errors.WithStack(&Error{Tool: tool, File: file, Stage: StageStart, Err: err})
		}
		return "", errors.WithStack(&Error{Tool: tool, File: file, Stage: StageExit, Err: err})
	}
	return string(out), nil
}

// lines splits on '\n' only, a trailing '\r' stays part of the line.
func lines(output string) []string {
	return strings.Split(output, "\n")
}

// firstSubmatch returns the first capture group of re in line.
func firstSubmatch(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
