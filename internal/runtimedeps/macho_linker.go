package runtimedeps

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/internal/tools"
	"code-intelligence.com/runtimedeps/util/fileutil"
)

const (
	rpathPrefix          = "@rpath"
	loaderPathPrefix     = "@loader_path"
	executablePathPrefix = "@executable_path"
)

type machOLinker struct {
	archive *Archive
	tool    tools.MachOTool
	// Tool results by absolute path
	fileInfos map[string]*tools.MachOFileInfo
}

var _ Linker = (*machOLinker)(nil)

func newMachOLinker(archive *Archive) *machOLinker {
	return &machOLinker{
		archive:   archive,
		fileInfos: make(map[string]*tools.MachOFileInfo),
	}
}

func (l *machOLinker) Prepare() error {
	tool := config.Tool(l.archive.opts.Tool)
	if tool == "" {
		tool = config.ToolOTool
	}
	if tool != config.ToolOTool {
		return errors.WithMessagef(ErrInvalidTool, "%q is not supported for Mach-O files", tool)
	}
	if l.tool != nil {
		return nil
	}
	command, err := l.archive.GetRuntimeDependenciesCommand(string(tool))
	if err != nil {
		return err
	}
	l.tool = tools.NewOToolTool(command, l.archive.runner)
	return nil
}

func (l *machOLinker) ScanDependencies(file string, targetType TargetType) error {
	// Members of a bundle other than its executable resolve
	// @executable_path relative to the bundle executable
	var executableDir string
	if targetType == Executable {
		executableDir = filepath.Dir(file)
	} else if bundleExecutable := l.archive.BundleExecutable(); bundleExecutable != "" {
		executableDir = filepath.Dir(bundleExecutable)
	}

	if !l.archive.markScanned(file) {
		return nil
	}
	return l.scan(file, filepath.Dir(file), executableDir, nil)
}

func (l *machOLinker) scan(file, loaderDir, executableDir string, parentRPaths []string) error {
	info, err := l.fileInfo(file)
	if err != nil {
		return err
	}
	rpaths := append(append([]string{}, info.RPaths...), parentRPaths...)

	for _, name := range info.Libs {
		if l.archive.IsPreExcluded(name) {
			continue
		}

		path, resolved, err := l.resolveDependency(name, loaderDir, executableDir, rpaths)
		if err != nil {
			return err
		}
		if !resolved {
			l.archive.AddUnresolvedPath(name)
			continue
		}
		if l.archive.IsPostExcluded(path) {
			continue
		}
		// The same library can be referenced with different prefixes,
		// resolved libraries are keyed by their file name
		if l.archive.AddResolvedPath(filepath.Base(path), path, nil) && l.archive.markScanned(path) {
			err = l.scan(path, filepath.Dir(path), executableDir, rpaths)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *machOLinker) fileInfo(file string) (*tools.MachOFileInfo, error) {
	absFile, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if info, ok := l.fileInfos[absFile]; ok {
		return info, nil
	}
	info, err := l.tool.GetFileInfo(absFile)
	if err != nil {
		return nil, err
	}
	l.fileInfos[absFile] = info
	return info, nil
}

// resolveDependency substitutes the @rpath, @loader_path and
// @executable_path prefixes of name. Names without one of these
// prefixes are used as they are.
func (l *machOLinker) resolveDependency(name, loaderDir, executableDir string, rpaths []string) (string, bool, error) {
	var path string
	var resolved bool
	switch {
	case strings.HasPrefix(name, rpathPrefix+"/"):
		for _, rpath := range rpaths {
			candidate := rpath + strings.TrimPrefix(name, rpathPrefix)
			if hasLoaderPrefix(candidate) {
				path, resolved = resolveLoaderPath(candidate, loaderDir, executableDir)
			} else {
				path, resolved = candidate, fileutil.PathExists(candidate)
			}
			if resolved {
				break
			}
		}
	case hasLoaderPrefix(name):
		path, resolved = resolveLoaderPath(name, loaderDir, executableDir)
	default:
		path, resolved = name, true
	}

	if !resolved {
		return "", false, nil
	}
	if !filepath.IsAbs(path) {
		return "", false, errors.Errorf("Could not resolve file %s", path)
	}
	return filepath.Clean(path), true, nil
}

func hasLoaderPrefix(name string) bool {
	return strings.HasPrefix(name, loaderPathPrefix+"/") || strings.HasPrefix(name, executablePathPrefix+"/")
}

func resolveLoaderPath(name, loaderDir, executableDir string) (string, bool) {
	var path string
	if strings.HasPrefix(name, loaderPathPrefix+"/") {
		path = loaderDir + strings.TrimPrefix(name, loaderPathPrefix)
	} else {
		if executableDir == "" {
			return "", false
		}
		path = executableDir + strings.TrimPrefix(name, executablePathPrefix)
	}
	return path, fileutil.PathExists(path)
}
