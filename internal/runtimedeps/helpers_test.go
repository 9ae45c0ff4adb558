package runtimedeps

import (
	"debug/elf"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"code-intelligence.com/runtimedeps/util/fileutil"
)

func newTestArchive(t *testing.T, opts *Options) *Archive {
	t.Helper()
	a, err := New(opts)
	require.NoError(t, err)
	return a
}

// writeFiles creates empty files (and their parent directories).
func writeFiles(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("creating symlinks requires privileges on Windows")
	}
	require.NoError(t, os.Symlink(target, link))
}

// fakeMachines reports x86-64 for all existing files except for those
// in machines.
func fakeMachines(machines map[string]elf.Machine) func(string) (elf.Machine, error) {
	return func(path string) (elf.Machine, error) {
		if machine, ok := machines[path]; ok {
			return machine, nil
		}
		if !fileutil.PathExists(path) {
			return elf.EM_NONE, errors.Errorf("no such file: %s", path)
		}
		return elf.EM_X86_64, nil
	}
}

// writeExecutable creates an executable file named name in dir.
func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}
