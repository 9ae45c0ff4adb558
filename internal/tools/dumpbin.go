package tools

import (
	"regexp"

	"code-intelligence.com/runtimedeps/util/executil"
)

// dumpbin terminates its lines with "\r\n"
var dumpbinDLLRegex = regexp.MustCompile(`^    ([^\n]*\.[Dd][Ll][Ll])\r$`)

// DumpbinTool reads the imported DLLs of PE files from the output of
// "dumpbin /dependents".
type DumpbinTool struct {
	Command []string
	Runner  executil.Runner
}

var _ PETool = (*DumpbinTool)(nil)

func NewDumpbinTool(command []string, runner executil.Runner) *DumpbinTool {
	return &DumpbinTool{Command: command, Runner: runner}
}

func (t *DumpbinTool) GetFileInfo(file string) ([]string, error) {
	out, err := run(t.Runner, "dumpbin", t.Command, file, "/dependents")
	if err != nil {
		return nil, err
	}
	return ParseDumpbin(out), nil
}

func ParseDumpbin(output string) []string {
	var dlls []string
	for _, line := range lines(output) {
		if dll, ok := firstSubmatch(dumpbinDLLRegex, line); ok {
			dlls = append(dlls, dll)
		}
	}
	return dlls
}
