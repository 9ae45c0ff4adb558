package runtimedeps

import (
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver"
	"github.com/mattn/go-zglob"
	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/executil"
	"code-intelligence.com/runtimedeps/util/stringutil"
)

// GetRuntimeDependenciesCommand returns the command line to run the
// introspection tool search (objdump, otool or dumpbin).
func (a *Archive) GetRuntimeDependenciesCommand(search string) ([]string, error) {
	if command := stringutil.SplitList(a.opts.Command); len(command) > 0 {
		return command, nil
	}
	if search == "objdump" && a.opts.Objdump != "" {
		return []string{a.opts.Objdump}, nil
	}

	var extraDirs []string
	if a.goos == "windows" {
		extraDirs = visualStudioToolDirs()
	}
	path, err := executil.FindProgram(search, extraDirs)
	if err != nil {
		return nil, errors.WithMessagef(ErrToolNotFound, "Could not find %s", search)
	}
	log.Debugf("Using %s", path)
	return []string{path}, nil
}

// msvcToolDirs returns the bin directories of all MSVC toolsets of the
// Visual Studio installation in vsDir, newest toolset first.
func msvcToolDirs(vsDir string) []string {
	toolsets, err := zglob.Glob(filepath.ToSlash(filepath.Join(vsDir, "VC", "Tools", "MSVC", "*")))
	if err != nil {
		return nil
	}
	var dirs []string
	for _, toolset := range sortByVersionDescending(toolsets, filepath.Base) {
		dirs = append(dirs, hostBinDirs(toolset)...)
	}
	return dirs
}

// hostBinDirs returns the bin/Host<arch>/<arch> directories of an MSVC
// toolset, e.g. the one in VCToolsInstallDir.
func hostBinDirs(toolsetDir string) []string {
	dirs, err := zglob.Glob(filepath.ToSlash(filepath.Join(toolsetDir, "bin", "Host*", "*")))
	if err != nil {
		return nil
	}
	sort.Strings(dirs)
	return dirs
}

// sortByVersionDescending sorts elems by the version returned by
// version, newest first. Elements without a valid version go last.
func sortByVersionDescending(elems []string, version func(string) string) []string {
	sorted := append([]string{}, elems...)
	parse := func(s string) *semver.Version {
		v, err := semver.NewVersion(version(s))
		if err != nil {
			return nil
		}
		return v
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := parse(sorted[i]), parse(sorted[j])
		if vi == nil || vj == nil {
			return vi != nil
		}
		return vi.GreaterThan(vj)
	})
	return sorted
}
