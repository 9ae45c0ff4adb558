package tools

import (
	"regexp"

	"code-intelligence.com/runtimedeps/util/executil"
)

var objdumpDLLRegex = regexp.MustCompile(`^\t*DLL Name: ([^\n]*\.[Dd][Ll][Ll])$`)

// ObjdumpPETool reads the imported DLLs of PE files from the output of
// "objdump -p".
type ObjdumpPETool struct {
	Command []string
	Runner  executil.Runner
}

var _ PETool = (*ObjdumpPETool)(nil)

func NewObjdumpPETool(command []string, runner executil.Runner) *ObjdumpPETool {
	return &ObjdumpPETool{Command: command, Runner: runner}
}

func (t *ObjdumpPETool) GetFileInfo(file string) ([]string, error) {
	out, err := run(t.Runner, "objdump", t.Command, file, "-p")
	if err != nil {
		return nil, err
	}
	return ParseObjdumpPE(out), nil
}

func ParseObjdumpPE(output string) []string {
	var dlls []string
	for _, line := range lines(output) {
		if dll, ok := firstSubmatch(objdumpDLLRegex, line); ok {
			dlls = append(dlls, dll)
		}
	}
	return dlls
}
