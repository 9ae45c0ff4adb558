// Package runtimedeps resolves the shared libraries which a set of
// executables, shared libraries and modules needs at runtime, the way
// the dynamic loader of the target platform would find them.
package runtimedeps

import (
	"debug/elf"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/executil"
	"code-intelligence.com/runtimedeps/util/fileutil"
	"code-intelligence.com/runtimedeps/util/regexutil"
	"code-intelligence.com/runtimedeps/util/sliceutil"
)

// Archive holds the configuration and the results of one resolution
// run. It is not safe for concurrent use.
type Archive struct {
	opts     *Options
	patterns *patterns

	searchDirectories []string
	bundleExecutable  string

	resolvedPaths   map[string][]string
	unresolvedPaths map[string]struct{}
	rpaths          map[string][]string
	scanned         []scannedFile
	warnings        []string

	platform config.Platform
	linker   Linker

	runner executil.Runner
	goos   string
	// Returns the target machine of an ELF file
	readELFMachine func(path string) (elf.Machine, error)
}

type scannedFile struct {
	path string
	info os.FileInfo
}

func New(opts *Options) (*Archive, error) {
	if opts == nil {
		opts = &Options{}
	}
	err := opts.Validate()
	if err != nil {
		return nil, err
	}
	p, err := opts.compile()
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = executil.Output
	}

	return &Archive{
		opts:              opts,
		patterns:          p,
		searchDirectories: opts.Directories,
		bundleExecutable:  opts.BundleExecutable,
		resolvedPaths:     make(map[string][]string),
		unresolvedPaths:   make(map[string]struct{}),
		rpaths:            make(map[string][]string),
		runner:            runner,
		goos:              runtime.GOOS,
		readELFMachine:    readELFMachine,
	}, nil
}

// Prepare determines the target platform and prepares its Linker.
func (a *Archive) Prepare() error {
	platform, err := a.targetPlatform()
	if err != nil {
		return err
	}
	a.platform = platform

	format, _ := config.FormatOf(platform)
	switch format {
	case config.FormatELF:
		a.linker = newELFLinker(a)
	case config.FormatMachO:
		a.linker = newMachOLinker(a)
	case config.FormatPE:
		a.linker = newPELinker(a)
	}
	log.Debugf("Target platform: %s (%s)", platform, format)

	return a.linker.Prepare()
}

func (a *Archive) targetPlatform() (config.Platform, error) {
	if a.opts.Platform != "" {
		platform := config.Platform(a.opts.Platform)
		if _, ok := config.FormatOf(platform); !ok {
			return "", errors.WithMessagef(ErrInvalidPlatform, "%q, supported platforms are %v", a.opts.Platform, config.SupportedPlatforms)
		}
		return platform, nil
	}

	switch a.goos {
	case "windows":
		return config.PlatformWindows, nil
	case "darwin":
		return config.PlatformMacOS, nil
	case "linux":
		return config.PlatformLinux, nil
	}
	return "", errors.WithMessagef(ErrInvalidPlatform, "%s is not supported, please specify a platform",
		cases.Title(language.English).String(a.goos))
}

// GetRuntimeDependencies scans all files and their dependencies
// recursively. It stops at the first error.
func (a *Archive) GetRuntimeDependencies(executables, libraries, modules []string) error {
	if a.linker == nil {
		return errors.New("Prepare must be called before resolving dependencies")
	}
	for _, group := range []struct {
		files      []string
		targetType TargetType
	}{
		{executables, Executable},
		{libraries, SharedLibrary},
		{modules, ModuleLibrary},
	} {
		for _, file := range group.files {
			absFile, err := filepath.Abs(file)
			if err != nil {
				return errors.WithStack(err)
			}
			log.Debugf("Scanning %s %s", group.targetType, absFile)
			err = a.linker.ScanDependencies(absFile, group.targetType)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// IsPreExcluded reports whether the dependency name is excluded before
// it is resolved. Include patterns take precedence.
func (a *Archive) IsPreExcluded(name string) bool {
	return !regexutil.MatchAny(a.patterns.preInclude, name) &&
		regexutil.MatchAny(a.patterns.preExclude, name)
}

// IsPostExcluded reports whether the resolved path is excluded. The
// strict file list excludes unconditionally, otherwise include patterns
// and files take precedence.
func (a *Archive) IsPostExcluded(path string) bool {
	if containsSameFile(a.opts.PostExcludeFilesStrict, path) {
		return true
	}
	included := regexutil.MatchAny(a.patterns.postInclude, path) ||
		containsSameFile(a.opts.PostIncludeFiles, path)
	excluded := regexutil.MatchAny(a.patterns.postExclude, path) ||
		containsSameFile(a.opts.PostExcludeFiles, path)
	return !included && excluded
}

func containsSameFile(files []string, path string) bool {
	for _, f := range files {
		if fileutil.SameFile(f, path) {
			return true
		}
	}
	return false
}

// AddResolvedPath records that name resolved to path. It returns false
// if name already resolved to the same file.
func (a *Archive) AddResolvedPath(name, path string, rpaths []string) bool {
	for _, existing := range a.resolvedPaths[name] {
		if fileutil.SameFile(existing, path) {
			return false
		}
	}
	a.resolvedPaths[name] = append(a.resolvedPaths[name], path)
	a.rpaths[path] = rpaths
	log.Debugf("Resolved %s: %s", name, path)
	return true
}

func (a *Archive) AddUnresolvedPath(name string) {
	if _, ok := a.unresolvedPaths[name]; !ok {
		log.Debugf("Could not resolve %s", name)
	}
	a.unresolvedPaths[name] = struct{}{}
}

// markScanned returns true if no file which is the same as path was
// scanned before. Linkers only scan a file if this returns true.
func (a *Archive) markScanned(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		info = nil
	}
	cleaned := filepath.Clean(path)
	for _, s := range a.scanned {
		if s.path == cleaned || (info != nil && s.info != nil && os.SameFile(info, s.info)) {
			return false
		}
	}
	a.scanned = append(a.scanned, scannedFile{path: cleaned, info: info})
	return true
}

func (a *Archive) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	a.warnings = append(a.warnings, msg)
}

// ResolvedPaths returns the paths each dependency name resolved to.
func (a *Archive) ResolvedPaths() map[string][]string {
	res := make(map[string][]string, len(a.resolvedPaths))
	for name, paths := range a.resolvedPaths {
		res[name] = slices.Clone(paths)
	}
	return res
}

// UnresolvedPaths returns the sorted names of all dependencies which
// couldn't be resolved.
func (a *Archive) UnresolvedPaths() []string {
	names := maps.Keys(a.unresolvedPaths)
	slices.Sort(names)
	return names
}

// RPaths returns the rpaths which were in effect when each resolved
// path was reached.
func (a *Archive) RPaths() map[string][]string {
	return maps.Clone(a.rpaths)
}

func (a *Archive) SearchDirectories() []string {
	return a.searchDirectories
}

func (a *Archive) BundleExecutable() string {
	return a.bundleExecutable
}

func (a *Archive) Platform() config.Platform {
	return a.platform
}

func (a *Archive) Warnings() []string {
	return a.warnings
}

// Result is the outcome of a resolution run in the form consumed by
// packaging steps.
type Result struct {
	// Files of the dependencies which resolved to exactly one file
	Resolved []string `json:"resolved" yaml:"resolved"`
	// Dependencies which resolved to different files
	Conflicting map[string][]string `json:"conflicting,omitempty" yaml:"conflicting,omitempty"`
	Unresolved  []string            `json:"unresolved" yaml:"unresolved"`
}

func (a *Archive) Result() *Result {
	res := &Result{
		Resolved:   []string{},
		Unresolved: a.UnresolvedPaths(),
	}
	for name, paths := range a.resolvedPaths {
		if len(paths) == 1 {
			res.Resolved = append(res.Resolved, paths[0])
			continue
		}
		if res.Conflicting == nil {
			res.Conflicting = make(map[string][]string)
		}
		sorted := slices.Clone(paths)
		slices.Sort(sorted)
		res.Conflicting[name] = sorted
	}
	slices.Sort(res.Resolved)
	res.Resolved = sliceutil.RemoveDuplicates(res.Resolved)
	if res.Unresolved == nil {
		res.Unresolved = []string{}
	}
	return res
}

func readELFMachine(path string) (elf.Machine, error) {
	f, err := elf.Open(path)
	if err != nil {
		return elf.EM_NONE, errors.WithStack(err)
	}
	defer f.Close()
	return f.Machine, nil
}
