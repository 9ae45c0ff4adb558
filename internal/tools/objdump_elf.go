package tools

import (
	"regexp"

	"code-intelligence.com/runtimedeps/util/executil"
	"code-intelligence.com/runtimedeps/util/stringutil"
)

var (
	elfNeededRegex  = regexp.MustCompile(`^ *NEEDED *(.*)$`)
	elfRPathRegex   = regexp.MustCompile(`^ *RPATH *(.*)$`)
	elfRunPathRegex = regexp.MustCompile(`^ *RUNPATH *(.*)$`)
)

// ObjdumpELFTool reads the dynamic section of ELF files from the
// output of "objdump -p".
type ObjdumpELFTool struct {
	Command []string
	Runner  executil.Runner
}

var _ ELFTool = (*ObjdumpELFTool)(nil)

func NewObjdumpELFTool(command []string, runner executil.Runner) *ObjdumpELFTool {
	return &ObjdumpELFTool{Command: command, Runner: runner}
}

func (t *ObjdumpELFTool) GetFileInfo(file string) (*ELFFileInfo, error) {
	out, err := run(t.Runner, "objdump", t.Command, file, "-p")
	if err != nil {
		return nil, err
	}
	return ParseObjdumpELF(out), nil
}

// ParseObjdumpELF extracts the NEEDED, RPATH and RUNPATH entries from
// the private headers printed by objdump. RPATH and RUNPATH values are
// colon separated lists, empty entries are dropped.
func ParseObjdumpELF(output string) *ELFFileInfo {
	info := &ELFFileInfo{}
	for _, line := range lines(output) {
		if name, ok := firstSubmatch(elfNeededRegex, line); ok {
			info.Needed = append(info.Needed, name)
		} else if rpath, ok := firstSubmatch(elfRPathRegex, line); ok {
			info.RPaths = append(info.RPaths, stringutil.SplitNonEmpty(rpath, ":")...)
		} else if runpath, ok := firstSubmatch(elfRunPathRegex, line); ok {
			info.RunPaths = append(info.RunPaths, stringutil.SplitNonEmpty(runpath, ":")...)
		}
	}
	return info
}
