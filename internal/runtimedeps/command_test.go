package runtimedeps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRuntimeDependenciesCommand_Override(t *testing.T) {
	a := newTestArchive(t, &Options{Command: "xcrun;otool;", Objdump: "/opt/llvm/bin/llvm-objdump"})
	command, err := a.GetRuntimeDependenciesCommand("otool")
	require.NoError(t, err)
	assert.Equal(t, []string{"xcrun", "otool"}, command)

	a = newTestArchive(t, &Options{Objdump: "/opt/llvm/bin/llvm-objdump"})
	command, err = a.GetRuntimeDependenciesCommand("objdump")
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/llvm/bin/llvm-objdump"}, command)
}

func TestGetRuntimeDependenciesCommand_Path(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the executable bit")
	}
	dir := t.TempDir()
	otool := writeExecutable(t, dir, "otool")
	t.Setenv("PATH", dir)

	a := newTestArchive(t, &Options{Objdump: "/opt/llvm/bin/llvm-objdump"})
	command, err := a.GetRuntimeDependenciesCommand("otool")
	require.NoError(t, err)
	assert.Equal(t, []string{otool}, command)

	_, err = a.GetRuntimeDependenciesCommand("dumpbin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolNotFound))
	assert.Contains(t, err.Error(), "Could not find dumpbin")
}

func TestSortByVersionDescending(t *testing.T) {
	sorted := sortByVersionDescending([]string{"15.0", "17.0", "not-a-version", "16.0", "9.0"}, func(s string) string { return s })
	assert.Equal(t, []string{"17.0", "16.0", "15.0", "9.0", "not-a-version"}, sorted)
}

func TestMSVCToolDirs(t *testing.T) {
	vsDir := t.TempDir()
	msvc := filepath.Join(vsDir, "VC", "Tools", "MSVC")
	for _, dir := range []string{
		filepath.Join(msvc, "14.29.30133", "bin", "Hostx64", "x64"),
		filepath.Join(msvc, "14.36.32532", "bin", "Hostx86", "x86"),
		filepath.Join(msvc, "14.36.32532", "bin", "Hostx64", "x64"),
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	dirs := msvcToolDirs(vsDir)
	for i := range dirs {
		dirs[i] = filepath.ToSlash(filepath.Clean(dirs[i]))
	}
	assert.Equal(t, []string{
		filepath.ToSlash(filepath.Join(msvc, "14.36.32532", "bin", "Hostx64", "x64")),
		filepath.ToSlash(filepath.Join(msvc, "14.36.32532", "bin", "Hostx86", "x86")),
		filepath.ToSlash(filepath.Join(msvc, "14.29.30133", "bin", "Hostx64", "x64")),
	}, dirs)
}
