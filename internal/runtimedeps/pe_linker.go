package runtimedeps

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/internal/tools"
	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/fileutil"
)

type peLinker struct {
	archive *Archive
	tool    tools.PETool
	// Directories searched after the search directories of the archive
	systemDirs []string
}

var _ Linker = (*peLinker)(nil)

func newPELinker(archive *Archive) *peLinker {
	l := &peLinker{archive: archive}
	// The system directories of the host are only meaningful if the
	// binaries are resolved on Windows
	if runtime.GOOS == "windows" {
		l.systemDirs = windowsSystemDirectories()
	}
	return l
}

func (l *peLinker) Prepare() error {
	tool := config.Tool(l.archive.opts.Tool)
	if tool == "" {
		if _, err := l.archive.GetRuntimeDependenciesCommand(string(config.ToolDumpbin)); err == nil {
			tool = config.ToolDumpbin
		} else {
			tool = config.ToolObjdump
		}
		log.Debugf("Using %s to read PE files", tool)
	}

	if tool != config.ToolDumpbin && tool != config.ToolObjdump {
		return errors.WithMessagef(ErrInvalidTool, "%q is not supported for PE files", tool)
	}
	if l.tool != nil {
		return nil
	}

	command, err := l.archive.GetRuntimeDependenciesCommand(string(tool))
	if err != nil {
		return err
	}
	if tool == config.ToolDumpbin {
		l.tool = tools.NewDumpbinTool(command, l.archive.runner)
	} else {
		l.tool = tools.NewObjdumpPETool(command, l.archive.runner)
	}
	return nil
}

func (l *peLinker) ScanDependencies(file string, _ TargetType) error {
	if !l.archive.markScanned(file) {
		return nil
	}
	return l.scan(file)
}

func (l *peLinker) scan(file string) error {
	dlls, err := l.tool.GetFileInfo(file)
	if err != nil {
		return err
	}

	searchDirs := []string{filepath.Dir(file)}
	searchDirs = append(searchDirs, l.archive.SearchDirectories()...)
	searchDirs = append(searchDirs, l.systemDirs...)

	for _, dll := range dlls {
		name := strings.ToLower(dll)
		if l.archive.IsPreExcluded(name) {
			continue
		}

		path, found := findCaseInsensitive(name, searchDirs)
		if !found {
			l.archive.AddUnresolvedPath(name)
			continue
		}
		if l.archive.IsPostExcluded(path) {
			continue
		}
		// Every DLL is loaded like a shared library, whatever role the
		// file has in the archive
		if l.archive.AddResolvedPath(name, path, nil) && l.archive.markScanned(path) {
			err = l.scan(path)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func findCaseInsensitive(name string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		if path, ok := fileutil.FindCaseInsensitive(dir, name); ok && !fileutil.IsDir(path) {
			return path, true
		}
	}
	return "", false
}
