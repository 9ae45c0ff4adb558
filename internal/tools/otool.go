package tools

import (
	"regexp"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/util/executil"
)

var (
	machoRPathCmdRegex = regexp.MustCompile(`^ *cmd LC_RPATH$`)
	machoLoadCmdRegex  = regexp.MustCompile(`^ *cmd LC_LOAD(_WEAK)?_DYLIB$`)
	machoPathRegex     = regexp.MustCompile(`^ *path (.*) \(offset [0-9]+\)$`)
	machoNameRegex     = regexp.MustCompile(`^ *name (.*) \(offset [0-9]+\)$`)
)

// OToolTool reads the load commands of Mach-O files from the output of
// "otool -l".
type OToolTool struct {
	Command []string
	Runner  executil.Runner
}

var _ MachOTool = (*OToolTool)(nil)

func NewOToolTool(command []string, runner executil.Runner) *OToolTool {
	return &OToolTool{Command: command, Runner: runner}
}

func (t *OToolTool) GetFileInfo(file string) (*MachOFileInfo, error) {
	out, err := run(t.Runner, "otool", t.Command, file, "-l")
	if err != nil {
		return nil, err
	}
	info, err := ParseOTool(out)
	if err != nil {
		return nil, errors.WithStack(&Error{Tool: "otool", File: file, Stage: StageParse, Err: err})
	}
	return info, nil
}

// ParseOTool extracts the LC_RPATH and LC_LOAD_DYLIB/LC_LOAD_WEAK_DYLIB
// entries. The value of a load command is printed two lines below the
// "cmd" line, after the "cmdsize" line.
func ParseOTool(output string) (*MachOFileInfo, error) {
	info := &MachOFileInfo{}
	ls := lines(output)
	for i, line := range ls {
		switch {
		case machoRPathCmdRegex.MatchString(line):
			value, err := loadCommandValue(ls, i, machoPathRegex)
			if err != nil {
				return nil, err
			}
			info.RPaths = append(info.RPaths, value)
		case machoLoadCmdRegex.MatchString(line):
			value, err := loadCommandValue(ls, i, machoNameRegex)
			if err != nil {
				return nil, err
			}
			info.Libs = append(info.Libs, value)
		}
	}
	return info, nil
}

func loadCommandValue(ls []string, cmdIndex int, re *regexp.Regexp) (string, error) {
	if cmdIndex+2 >= len(ls) {
		return "", errors.Errorf("truncated load command: %q", ls[cmdIndex])
	}
	value, ok := firstSubmatch(re, ls[cmdIndex+2])
	if !ok {
		return "", errors.Errorf("unexpected load command value: %q", ls[cmdIndex+2])
	}
	return value, nil
}
