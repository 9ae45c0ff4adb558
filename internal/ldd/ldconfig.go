// Package ldd provides the directories the dynamic loader of the
// running system searches by default, and a cross check of resolved
// ELF dependencies against the loader's own view.
package ldd

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/util/executil"
	"code-intelligence.com/runtimedeps/util/sliceutil"
)

// Directories in which ldconfig is searched if it's not in the PATH
var ldconfigDirs = []string{"/sbin", "/usr/bin", "/usr/sbin"}

var ldconfigDirRegex = regexp.MustCompile(`^([^\t:]*):`)

// SystemLibraryPathProvider returns the default search directories of
// the dynamic loader.
type SystemLibraryPathProvider interface {
	LibraryPaths() ([]string, error)
}

// LDConfigTool lists the directories of the loader cache by running
// "ldconfig -v -N -X".
type LDConfigTool struct {
	Command []string
	Runner  executil.Runner
}

var _ SystemLibraryPathProvider = (*LDConfigTool)(nil)

func NewLDConfigTool(command []string, runner executil.Runner) *LDConfigTool {
	return &LDConfigTool{Command: command, Runner: runner}
}

func (t *LDConfigTool) LibraryPaths() ([]string, error) {
	if len(t.Command) == 0 {
		return nil, errors.New("Could not find ldconfig")
	}
	runner := t.Runner
	if runner == nil {
		runner = executil.Output
	}
	args := append(append([]string{}, t.Command...), "-v", "-N", "-X")
	out, err := runner(args)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to run ldconfig")
	}
	return ParseLDConfig(string(out)), nil
}

// ParseLDConfig returns the directory headers of the ldconfig output,
// the library lines below them are indented with a tab.
func ParseLDConfig(output string) []string {
	var dirs []string
	for _, line := range strings.Split(output, "\n") {
		m := ldconfigDirRegex.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		dirs = append(dirs, m[1])
	}
	return sliceutil.RemoveDuplicates(dirs)
}

// FindLDConfig returns the command to run ldconfig. An explicit
// command takes precedence over the search in the PATH and the usual
// sbin directories.
func FindLDConfig(command []string) ([]string, error) {
	if len(command) > 0 {
		return command, nil
	}
	path, err := executil.FindProgram("ldconfig", ldconfigDirs)
	if err != nil {
		return nil, errors.New("Could not find ldconfig")
	}
	return []string{path}, nil
}
