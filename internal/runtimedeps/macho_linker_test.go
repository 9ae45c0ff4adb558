package runtimedeps

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-intelligence.com/runtimedeps/internal/tools"
	"code-intelligence.com/runtimedeps/pkg/mocks"
)

func newTestMachOLinker(a *Archive, tool tools.MachOTool) *machOLinker {
	l := newMachOLinker(a)
	l.tool = tool
	a.linker = l
	return l
}

func TestMachOLinker_RPathOrder(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "bin", "app")
	a1 := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	libfoo := filepath.Join(b, "libfoo.dylib")
	writeFiles(t, app, libfoo)

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", app).Return(&tools.MachOFileInfo{Libs: []string{"@rpath/libfoo.dylib"}, RPaths: []string{a1, b}}, nil)
	tool.On("GetFileInfo", libfoo).Return(&tools.MachOFileInfo{}, nil)

	a := newTestArchive(t, &Options{})
	newTestMachOLinker(a, tool)

	require.NoError(t, a.GetRuntimeDependencies([]string{app}, nil, nil))
	assert.Equal(t, map[string][]string{"libfoo.dylib": {libfoo}}, a.ResolvedPaths())
	assert.Empty(t, a.UnresolvedPaths())
}

func TestMachOLinker_LoaderAndExecutablePath(t *testing.T) {
	root := t.TempDir()
	contents := filepath.Join(root, "App.app", "Contents")
	app := filepath.Join(contents, "MacOS", "App")
	plugin := filepath.Join(contents, "PlugIns", "libplugin.dylib")
	sibling := filepath.Join(contents, "PlugIns", "libsibling.dylib")
	helper := filepath.Join(contents, "Frameworks", "libhelper.dylib")
	writeFiles(t, app, plugin, sibling, helper)

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", plugin).Return(&tools.MachOFileInfo{Libs: []string{
		"@executable_path/../Frameworks/libhelper.dylib",
		"@loader_path/libsibling.dylib",
		"@loader_path/libmissing.dylib",
	}}, nil)
	tool.On("GetFileInfo", helper).Return(&tools.MachOFileInfo{}, nil)
	tool.On("GetFileInfo", sibling).Return(&tools.MachOFileInfo{}, nil)

	a := newTestArchive(t, &Options{BundleExecutable: app})
	newTestMachOLinker(a, tool)

	require.NoError(t, a.GetRuntimeDependencies(nil, nil, []string{plugin}))
	assert.Equal(t, map[string][]string{
		"libhelper.dylib":  {helper},
		"libsibling.dylib": {sibling},
	}, a.ResolvedPaths())
	assert.Equal(t, []string{"@loader_path/libmissing.dylib"}, a.UnresolvedPaths())
}

func TestMachOLinker_SameLibraryWithDifferentPrefixes(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "bin", "app")
	lib := filepath.Join(root, "lib")
	libfoo := filepath.Join(lib, "libfoo.dylib")
	libbar := filepath.Join(lib, "libbar.dylib")
	writeFiles(t, app, libfoo, libbar)

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", app).Return(&tools.MachOFileInfo{
		Libs:   []string{"@rpath/libfoo.dylib", "@rpath/libbar.dylib"},
		RPaths: []string{lib},
	}, nil)
	tool.On("GetFileInfo", libbar).Return(&tools.MachOFileInfo{Libs: []string{"@loader_path/libfoo.dylib"}}, nil)
	tool.On("GetFileInfo", libfoo).Return(&tools.MachOFileInfo{}, nil)

	a := newTestArchive(t, &Options{})
	newTestMachOLinker(a, tool)

	require.NoError(t, a.GetRuntimeDependencies([]string{app}, nil, nil))
	assert.Equal(t, map[string][]string{
		"libfoo.dylib": {libfoo},
		"libbar.dylib": {libbar},
	}, a.ResolvedPaths())
	tool.AssertNumberOfCalls(t, "GetFileInfo", 3)
}

func TestMachOLinker_ExecutablePathWithoutBundleExecutable(t *testing.T) {
	root := t.TempDir()
	lib := filepath.Join(root, "lib", "libfoo.dylib")
	writeFiles(t, lib, filepath.Join(root, "lib", "libbar.dylib"))

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", lib).Return(&tools.MachOFileInfo{Libs: []string{"@executable_path/libbar.dylib"}}, nil)

	a := newTestArchive(t, &Options{})
	newTestMachOLinker(a, tool)

	require.NoError(t, a.GetRuntimeDependencies(nil, []string{lib}, nil))
	assert.Empty(t, a.ResolvedPaths())
	assert.Equal(t, []string{"@executable_path/libbar.dylib"}, a.UnresolvedPaths())
}

func TestMachOLinker_InheritedRPaths(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "bin", "app")
	lib := filepath.Join(root, "lib")
	libx := filepath.Join(lib, "libx.dylib")
	liby := filepath.Join(lib, "liby.dylib")
	writeFiles(t, app, libx, liby)

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", app).Return(&tools.MachOFileInfo{Libs: []string{"@rpath/libx.dylib"}, RPaths: []string{"@loader_path/../lib"}}, nil)
	tool.On("GetFileInfo", libx).Return(&tools.MachOFileInfo{Libs: []string{"@rpath/liby.dylib"}}, nil)
	tool.On("GetFileInfo", liby).Return(&tools.MachOFileInfo{}, nil)

	a := newTestArchive(t, &Options{})
	newTestMachOLinker(a, tool)

	require.NoError(t, a.GetRuntimeDependencies([]string{app}, nil, nil))
	assert.Equal(t, map[string][]string{
		"libx.dylib": {libx},
		"liby.dylib": {liby},
	}, a.ResolvedPaths())
}

func TestMachOLinker_AbsoluteNamesAndExclusion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("install names are not absolute paths on Windows")
	}
	root := t.TempDir()
	app := filepath.Join(root, "app")
	writeFiles(t, app)

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", app).Return(&tools.MachOFileInfo{Libs: []string{
		"/usr/lib/libSystem.B.dylib",
		"/System/Library/Frameworks/CoreFoundation.framework/Versions/A/CoreFoundation",
		"/opt/local/lib/libz.1.dylib",
	}}, nil)
	tool.On("GetFileInfo", "/opt/local/lib/libz.1.dylib").Return(&tools.MachOFileInfo{}, nil)

	a := newTestArchive(t, &Options{
		PreExcludeRegexes:  []string{`^/System/`},
		PostExcludeRegexes: []string{`^/usr/lib/`},
	})
	newTestMachOLinker(a, tool)

	require.NoError(t, a.GetRuntimeDependencies([]string{app}, nil, nil))
	tool.AssertExpectations(t)
	assert.Equal(t, map[string][]string{
		"libz.1.dylib": {"/opt/local/lib/libz.1.dylib"},
	}, a.ResolvedPaths())
}

func TestMachOLinker_RelativeNameIsAnError(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	writeFiles(t, app)

	tool := &mocks.MachOToolMock{}
	tool.On("GetFileInfo", app).Return(&tools.MachOFileInfo{Libs: []string{"libfoo.dylib"}}, nil)

	a := newTestArchive(t, &Options{})
	newTestMachOLinker(a, tool)

	err := a.GetRuntimeDependencies([]string{app}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not resolve file libfoo.dylib")
}

func TestMachOLinker_FileInfoCache(t *testing.T) {
	tool := &mocks.MachOToolMock{}
	info := &tools.MachOFileInfo{Libs: []string{"/usr/lib/libc++.1.dylib"}}
	file := filepath.Join(t.TempDir(), "libfoo.dylib")
	tool.On("GetFileInfo", file).Return(info, nil).Once()

	l := newTestMachOLinker(newTestArchive(t, &Options{}), tool)
	for i := 0; i < 2; i++ {
		res, err := l.fileInfo(file)
		require.NoError(t, err)
		assert.Same(t, info, res)
	}
	tool.AssertNumberOfCalls(t, "GetFileInfo", 1)
}
