package runtimedeps

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidRegex(t *testing.T) {
	_, err := New(&Options{PostExcludeRegexes: []string{"^/usr/lib", "(unclosed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post-exclude-regexes")
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestIsPreExcluded(t *testing.T) {
	a := newTestArchive(t, &Options{
		PreIncludeRegexes: []string{`^libkeep`},
		PreExcludeRegexes: []string{`^lib`, `^api-ms-`},
	})

	assert.False(t, a.IsPreExcluded("libkeep.so.1"), "include takes precedence")
	assert.True(t, a.IsPreExcluded("libc.so.6"))
	assert.True(t, a.IsPreExcluded("api-ms-win-crt-runtime-l1-1-0.dll"))
	assert.False(t, a.IsPreExcluded("foo.so"))
}

func TestIsPreExcluded_NoPatterns(t *testing.T) {
	a := newTestArchive(t, &Options{})
	assert.False(t, a.IsPreExcluded("libc.so.6"))
}

func TestIsPostExcluded(t *testing.T) {
	dir := t.TempDir()
	system := filepath.Join(dir, "system")
	keep := filepath.Join(system, "libkeep.so")
	strict := filepath.Join(system, "libkeep-strict.so")
	other := filepath.Join(system, "libother.so")
	listed := filepath.Join(dir, "vendor", "libvendor.so")
	included := filepath.Join(system, "libincluded.so")
	writeFiles(t, keep, strict, other, listed, included)

	a := newTestArchive(t, &Options{
		PostIncludeRegexes:     []string{`keep`},
		PostExcludeRegexes:     []string{"^" + regexp.QuoteMeta(system)},
		PostIncludeFiles:       []string{included},
		PostExcludeFiles:       []string{listed},
		PostExcludeFilesStrict: []string{strict},
	})

	assert.False(t, a.IsPostExcluded(keep), "include regex takes precedence")
	assert.True(t, a.IsPostExcluded(strict), "strict exclusion wins over include regex")
	assert.True(t, a.IsPostExcluded(other))
	assert.True(t, a.IsPostExcluded(listed))
	assert.False(t, a.IsPostExcluded(included), "include file takes precedence")
	assert.False(t, a.IsPostExcluded(filepath.Join(dir, "libfree.so")))
}

func TestIsPostExcluded_FileIdentity(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "libfoo.so.1.2")
	writeFiles(t, real)
	link := filepath.Join(dir, "libfoo.so.1")
	symlink(t, real, link)

	a := newTestArchive(t, &Options{PostExcludeFilesStrict: []string{real}})
	assert.True(t, a.IsPostExcluded(link))
}

func TestAddResolvedPath(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "libfoo.so.1.2")
	other := filepath.Join(dir, "other", "libfoo.so.1")
	writeFiles(t, real, other)
	link := filepath.Join(dir, "libfoo.so.1")
	symlink(t, real, link)

	a := newTestArchive(t, &Options{})
	assert.True(t, a.AddResolvedPath("libfoo.so.1", link, []string{dir}))
	assert.False(t, a.AddResolvedPath("libfoo.so.1", real, nil), "same file through a symlink")
	assert.False(t, a.AddResolvedPath("libfoo.so.1", link, nil))
	assert.True(t, a.AddResolvedPath("libfoo.so.1", other, nil))
	assert.True(t, a.AddResolvedPath("libfoo.so", real, nil), "identity is only compared per name")

	assert.Equal(t, map[string][]string{
		"libfoo.so.1": {link, other},
		"libfoo.so":   {real},
	}, a.ResolvedPaths())
	assert.Equal(t, []string{dir}, a.RPaths()[link])
}

func TestAddUnresolvedPath(t *testing.T) {
	a := newTestArchive(t, &Options{})
	a.AddUnresolvedPath("libz.so.1")
	a.AddUnresolvedPath("libc.so.6")
	a.AddUnresolvedPath("libz.so.1")
	assert.Equal(t, []string{"libc.so.6", "libz.so.1"}, a.UnresolvedPaths())
}

func TestMarkScanned(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "libfoo.so")
	writeFiles(t, real)
	link := filepath.Join(dir, "libfoo.so.1")
	symlink(t, real, link)

	a := newTestArchive(t, &Options{})
	assert.True(t, a.markScanned(link))
	assert.False(t, a.markScanned(real))
	assert.False(t, a.markScanned(filepath.Join(dir, ".", "libfoo.so.1")))
	assert.True(t, a.markScanned(filepath.Join(dir, "missing.so")))
	assert.False(t, a.markScanned(filepath.Join(dir, "missing.so")))
}

func TestResult(t *testing.T) {
	a := newTestArchive(t, &Options{})
	a.AddResolvedPath("libz.so.1", "/lib/libz.so.1", nil)
	a.AddResolvedPath("libfoo.so", "/opt/b/libfoo.so", nil)
	a.AddResolvedPath("libfoo.so", "/opt/a/libfoo.so", nil)
	a.AddResolvedPath("libbar.so", "/opt/a/libbar.so", nil)
	a.AddUnresolvedPath("libmissing.so")

	res := a.Result()
	assert.Equal(t, []string{"/lib/libz.so.1", "/opt/a/libbar.so"}, res.Resolved)
	assert.Equal(t, map[string][]string{"libfoo.so": {"/opt/a/libfoo.so", "/opt/b/libfoo.so"}}, res.Conflicting)
	assert.Equal(t, []string{"libmissing.so"}, res.Unresolved)
}

func TestResult_Empty(t *testing.T) {
	res := newTestArchive(t, &Options{}).Result()
	assert.Empty(t, res.Resolved)
	assert.NotNil(t, res.Resolved)
	assert.Nil(t, res.Conflicting)
	assert.NotNil(t, res.Unresolved)
}

func TestPrepare_InvalidPlatform(t *testing.T) {
	a := newTestArchive(t, &Options{Platform: "aix"})
	err := a.Prepare()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPlatform))

	a = newTestArchive(t, &Options{})
	a.goos = "plan9"
	err = a.Prepare()
	require.True(t, errors.Is(err, ErrInvalidPlatform))
	assert.Contains(t, err.Error(), "Plan9 is not supported")
}

func TestPrepare_InvalidTool(t *testing.T) {
	for platform, tool := range map[string]string{
		"linux":   "dumpbin",
		"macos":   "objdump",
		"windows": "otool",
	} {
		a := newTestArchive(t, &Options{Platform: platform, Tool: tool, Command: "true"})
		err := a.Prepare()
		require.Error(t, err, platform)
		assert.True(t, errors.Is(err, ErrInvalidTool), platform)
	}
}

func TestPrepare_HostPlatform(t *testing.T) {
	for goos, platform := range map[string]string{
		"linux":   "linux",
		"darwin":  "macos",
		"windows": "windows",
	} {
		a := newTestArchive(t, &Options{})
		a.goos = goos
		p, err := a.targetPlatform()
		require.NoError(t, err)
		assert.Equal(t, platform, string(p))
	}
}

func TestGetRuntimeDependencies_NotPrepared(t *testing.T) {
	a := newTestArchive(t, &Options{})
	err := a.GetRuntimeDependencies([]string{"/bin/true"}, nil, nil)
	assert.Error(t, err)
}

func TestValidate_AbsolutePaths(t *testing.T) {
	opts := &Options{
		Directories:      []string{"lib"},
		BundleExecutable: filepath.Join("bin", "app"),
		PostExcludeFiles: []string{"libfoo.so"},
	}
	require.NoError(t, opts.Validate())
	assert.True(t, filepath.IsAbs(opts.Directories[0]))
	assert.True(t, filepath.IsAbs(opts.BundleExecutable))
	assert.True(t, filepath.IsAbs(opts.PostExcludeFiles[0]))
}
