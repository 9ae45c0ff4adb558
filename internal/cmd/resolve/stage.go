package resolve

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/alexflint/go-filemutex"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"code-intelligence.com/runtimedeps/internal/ldd"
	"code-intelligence.com/runtimedeps/internal/runtimedeps"
	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/fileutil"
)

const stageLockFile = ".runtimedeps.lock"

// copyFiles copies the files into dir. Symlinks are resolved, so that
// the copies can be packaged without their targets. Concurrent calls
// for the same dir, e.g. from parallel build steps, are serialized via
// a lock file in dir.
func copyFiles(files []string, dir string) (err error) {
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return errors.WithStack(err)
	}

	lockFile := filepath.Join(dir, stageLockFile)
	mutex, err := filemutex.New(lockFile)
	if err != nil {
		// filemutex.New returns errors from syscall.Open without the
		// path, so we wrap it in the os.PathError same as os.Open does.
		return errors.WithStack(&os.PathError{Op: "open", Path: lockFile, Err: err})
	}
	defer mutex.Close()
	err = mutex.Lock()
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		unlockErr := mutex.Unlock()
		if err == nil {
			err = errors.WithStack(unlockErr)
		}
	}()

	opts := copy.Options{
		OnSymlink: func(symlink string) copy.SymlinkAction {
			return copy.Deep
		},
	}
	sources := make(map[string]string, len(files))
	for _, file := range files {
		dest := filepath.Join(dir, filepath.Base(file))
		if existing, ok := sources[dest]; ok {
			if fileutil.SameFile(existing, file) {
				continue
			}
			return errors.Errorf("%s and %s would both be copied to %s", existing, file, dest)
		}
		sources[dest] = file
		log.Debugf("Copying %s to %s", file, dest)
		err = copy.Copy(file, dest, opts)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// checkLoader warns about libraries which the dynamic loader of this
// system loads for the executables but which were not resolved.
func (c *resolveCmd) checkLoader(archive *runtimedeps.Archive) {
	resolved := archive.Result().Resolved

	// The loader is run for all executables in parallel, the warnings
	// are printed in the order of the executables afterwards.
	deps := make([][]string, len(c.opts.Executables))
	errs := make([]error, len(c.opts.Executables))
	var routines errgroup.Group
	routines.SetLimit(runtime.NumCPU())
	for i, executable := range c.opts.Executables {
		i, executable := i, executable
		routines.Go(func() error {
			deps[i], errs[i] = ldd.LoaderDependencies(executable)
			return nil
		})
	}
	_ = routines.Wait()

	for i, executable := range c.opts.Executables {
		if errs[i] != nil {
			log.Warnf("Failed to check dependencies of %s with the dynamic loader: %v", executable, errs[i])
			continue
		}
		for _, dep := range deps[i] {
			if fileutil.SameFile(dep, executable) || containsSameFile(resolved, dep) {
				continue
			}
			if archive.IsPostExcluded(dep) {
				continue
			}
			log.Warnf("%s is loaded by the dynamic loader for %s but was not resolved", dep, executable)
		}
	}
}

func containsSameFile(files []string, file string) bool {
	for _, f := range files {
		if fileutil.SameFile(f, file) {
			return true
		}
	}
	return false
}
