package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOptions struct {
	Platform           string   `mapstructure:"platform"`
	PostExcludeRegexes []string `mapstructure:"post-exclude-regexes"`
	Directories        []string `mapstructure:"directories"`
}

func TestFindAndParseConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	projectDir := t.TempDir()
	subDir := filepath.Join(projectDir, "build", "bin")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	content := `platform: macos
post-exclude-regexes:
  - "^/usr/lib"
  - "^/System"
directories:
  - /opt/lib
`
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, ConfigFileName), []byte(content), 0o644))

	found, err := FindConfigFile(subDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(projectDir, ConfigFileName), found)

	viper.Set("directories", []string{"/from/flag"})
	opts := &testOptions{}
	require.NoError(t, FindAndParseConfig(found, opts))
	assert.Equal(t, "macos", opts.Platform)
	assert.Equal(t, []string{"^/usr/lib", "^/System"}, opts.PostExcludeRegexes)
	assert.Equal(t, []string{"/from/flag"}, opts.Directories)
}

func TestFindConfigFile_NotFound(t *testing.T) {
	found, err := FindConfigFile(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestInit_Env(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("RUNTIMEDEPS_BUNDLE_EXECUTABLE", "/opt/app/bin/app")

	Init()
	assert.Equal(t, "/opt/app/bin/app", viper.GetString("bundle-executable"))
}

func TestFormatOf(t *testing.T) {
	format, ok := FormatOf(PlatformWindows)
	assert.True(t, ok)
	assert.Equal(t, FormatPE, format)

	_, ok = FormatOf("aix")
	assert.False(t, ok)
}
