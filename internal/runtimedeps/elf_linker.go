package runtimedeps

import (
	"debug/elf"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/internal/ldd"
	"code-intelligence.com/runtimedeps/internal/tools"
	"code-intelligence.com/runtimedeps/util/fileutil"
	"code-intelligence.com/runtimedeps/util/stringutil"
)

var originRegex = regexp.MustCompile(`\$ORIGIN([^a-zA-Z0-9_]|$)`)

type elfLinker struct {
	archive  *Archive
	tool     tools.ELFTool
	ldconfig ldd.SystemLibraryPathProvider

	ldconfigPaths []string
	machine       elf.Machine
	haveMachine   bool
}

var _ Linker = (*elfLinker)(nil)

func newELFLinker(archive *Archive) *elfLinker {
	return &elfLinker{archive: archive}
}

func (l *elfLinker) Prepare() error {
	tool := config.Tool(l.archive.opts.Tool)
	if tool == "" {
		tool = config.ToolObjdump
	}
	if tool != config.ToolObjdump {
		return errors.WithMessagef(ErrInvalidTool, "%q is not supported for ELF files", tool)
	}

	if l.tool == nil {
		command, err := l.archive.GetRuntimeDependenciesCommand(string(tool))
		if err != nil {
			return err
		}
		l.tool = tools.NewObjdumpELFTool(command, l.archive.runner)
	}

	if l.ldconfig == nil {
		command, err := ldd.FindLDConfig(stringutil.SplitList(l.archive.opts.LDConfig))
		if err != nil {
			return err
		}
		l.ldconfig = ldd.NewLDConfigTool(command, l.archive.runner)
	}
	var err error
	l.ldconfigPaths, err = l.ldconfig.LibraryPaths()
	return err
}

func (l *elfLinker) ScanDependencies(file string, _ TargetType) error {
	machine, err := l.archive.readELFMachine(file)
	if err != nil {
		return errors.WithMessagef(err, "Not a valid ELF file: %s", file)
	}
	if !l.haveMachine {
		l.machine = machine
		l.haveMachine = true
	} else if machine != l.machine {
		return errors.WithMessagef(ErrArchitectureMismatch, "%s is %s, expected %s", file, machine, l.machine)
	}

	if !l.archive.markScanned(file) {
		return nil
	}
	return l.scan(file, nil)
}

// scan resolves the dependencies of file. parentRPaths are the rpaths
// inherited from the files through which file was reached.
func (l *elfLinker) scan(file string, parentRPaths []string) error {
	info, err := l.tool.GetFileInfo(file)
	if err != nil {
		return err
	}

	origin := filepath.Dir(file)
	rpaths := substituteOrigin(info.RPaths, origin)
	runpaths := substituteOrigin(info.RunPaths, origin)

	// RPATHs of the loading files are inherited, RUNPATHs are not
	inherited := append(append([]string{}, rpaths...), parentRPaths...)

	var searchPaths []string
	if len(runpaths) > 0 {
		searchPaths = append(searchPaths, runpaths...)
	} else {
		searchPaths = append(searchPaths, inherited...)
	}
	searchPaths = append(searchPaths, l.ldconfigPaths...)

	for _, name := range info.Needed {
		if strings.Contains(name, "/") {
			return errors.WithMessagef(ErrPathDependency, "%s (needed by %s)", name, file)
		}
		if l.archive.IsPreExcluded(name) {
			continue
		}

		path, err := l.resolveDependency(name, searchPaths)
		if err != nil {
			return errors.WithMessagef(err, "%s (needed by %s)", name, file)
		}
		if path == "" {
			l.archive.AddUnresolvedPath(name)
			continue
		}
		// Found via a relative RPATH or RUNPATH entry
		if !filepath.IsAbs(path) {
			return errors.Errorf("Could not resolve file %s (needed by %s)", path, file)
		}
		if l.archive.IsPostExcluded(path) {
			continue
		}
		if l.archive.AddResolvedPath(name, path, inherited) && l.archive.markScanned(path) {
			err = l.scan(path, inherited)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveDependency returns the first file with a compatible
// architecture in searchPaths, then in the archive's search directories.
// An empty path is returned if there is none.
func (l *elfLinker) resolveDependency(name string, searchPaths []string) (string, error) {
	path, mismatch := l.findInDirectories(name, searchPaths)
	if path != "" {
		return path, nil
	}

	path, fallbackMismatch := l.findInDirectories(name, l.archive.SearchDirectories())
	if path != "" {
		l.archive.warnf("Dependency %s found in search directory:\n  %s", name, filepath.Dir(path))
		return path, nil
	}

	if mismatch || fallbackMismatch {
		return "", errors.WithMessagef(ErrArchitectureMismatch, "no %s library found for %s", l.machine, name)
	}
	return "", nil
}

// findInDirectories also reports whether a file of the name with a
// different architecture was found.
func (l *elfLinker) findInDirectories(name string, dirs []string) (string, bool) {
	var mismatch bool
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if !fileutil.PathExists(candidate) || fileutil.IsDir(candidate) {
			continue
		}
		machine, err := l.archive.readELFMachine(candidate)
		if err != nil {
			// Not an ELF file, e.g. a linker script
			continue
		}
		if machine != l.machine {
			mismatch = true
			continue
		}
		return candidate, false
	}
	return "", mismatch
}

// substituteOrigin replaces $ORIGIN and ${ORIGIN} with origin.
func substituteOrigin(paths []string, origin string) []string {
	res := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.ReplaceAll(p, "${ORIGIN}", origin)
		p = originRegex.ReplaceAllStringFunc(p, func(match string) string {
			return origin + strings.TrimPrefix(match, "$ORIGIN")
		})
		res = append(res, filepath.Clean(p))
	}
	return res
}
