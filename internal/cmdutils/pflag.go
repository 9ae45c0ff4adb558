package cmdutils

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"code-intelligence.com/runtimedeps/internal/config"
)

func ViperMustBindPFlag(key string, flag *pflag.Flag) {
	err := viper.BindPFlag(key, flag)
	if err != nil {
		panic(err)
	}
}

// AddFlags executes the specified Add*Flag functions and returns a
// function which binds all those flags to viper
func AddFlags(cmd *cobra.Command, funcs ...func(cmd *cobra.Command) func()) (bindFlags func()) { // nolint:nonamedreturns
	var bindFlagFuncs []func()
	for _, f := range funcs {
		bindFlagFunc := f(cmd)
		bindFlagFuncs = append(bindFlagFuncs, bindFlagFunc)
	}
	return func() {
		for _, f := range bindFlagFuncs {
			f()
		}
	}
}

// addStringArrayFlag adds a repeatable flag whose values are bound to
// the viper key.
func addStringArrayFlag(cmd *cobra.Command, name, key, usage string) func() {
	cmd.Flags().StringArray(name, nil, usage+"\nThis flag can be used multiple times.")
	return func() {
		ViperMustBindPFlag(key, cmd.Flags().Lookup(name))
	}
}

func addStringFlag(cmd *cobra.Command, name, usage string) func() {
	cmd.Flags().String(name, "", usage)
	return func() {
		ViperMustBindPFlag(name, cmd.Flags().Lookup(name))
	}
}

func AddLibraryFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "library", "libraries",
		"A shared `library` whose dependencies are resolved.\n"+
			"Glob patterns like \"lib/**/*.so\" are expanded.")
}

func AddModuleFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "module", "modules",
		"A loadable `module` (plugin) whose dependencies are resolved.\n"+
			"Glob patterns like \"plugins/*.so\" are expanded.")
}

func AddDirectoryFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "directory", "directories",
		"A `directory` which is searched if a dependency can't be found\n"+
			"where the dynamic loader would search for it. A warning is printed\n"+
			"for each dependency found this way.")
}

func AddBundleExecutableFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "bundle-executable",
		"The main `executable` of a macOS bundle. @executable_path in the\n"+
			"dependencies of libraries and modules is resolved relative to it.")
}

func AddPreIncludeRegexFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "pre-include-regex", "pre-include-regexes",
		"Dependency names matching the `regex` are resolved even if they\n"+
			"match a --pre-exclude-regex.")
}

func AddPreExcludeRegexFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "pre-exclude-regex", "pre-exclude-regexes",
		"Dependency names matching the `regex` are not resolved.")
}

func AddPostIncludeRegexFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "post-include-regex", "post-include-regexes",
		"Resolved paths matching the `regex` are included even if they\n"+
			"match a --post-exclude-regex or --post-exclude-file.")
}

func AddPostExcludeRegexFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "post-exclude-regex", "post-exclude-regexes",
		"Resolved paths matching the `regex` are excluded, e.g. \"^/usr/lib\".")
}

func AddPostIncludeFileFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "post-include-file", "post-include-files",
		"A `file` which is included even if it matches a --post-exclude-regex.\n"+
			"Files are compared by identity, so symlinks to the file match as well.")
}

func AddPostExcludeFileFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "post-exclude-file", "post-exclude-files",
		"A `file` which is excluded unless it matches a --post-include-regex.")
}

func AddPostExcludeFileStrictFlag(cmd *cobra.Command) func() {
	return addStringArrayFlag(cmd, "post-exclude-file-strict", "post-exclude-files-strict",
		"A `file` which is always excluded, include options don't apply.")
}

func AddPlatformFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "platform",
		"The `platform` whose dynamic loader is emulated, one of: "+strings.Join(config.SupportedPlatforms, ", ")+".\n"+
			"Defaults to the host platform.")
}

func AddToolFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "tool",
		"The `tool` used to inspect binaries, one of: "+strings.Join(config.SupportedTools, ", ")+".\n"+
			"Defaults to objdump on Linux, otool on macOS and dumpbin on Windows\n"+
			"(objdump if dumpbin is not available).")
}

func AddCommandFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "command",
		"The `command` which runs the inspection tool, arguments separated by\n"+
			"semicolons, e.g. \"xcrun;otool\".")
}

func AddObjdumpFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "objdump",
		"Path to the objdump `executable`.")
}

func AddLDConfigFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "ldconfig",
		"The `command` which runs ldconfig, arguments separated by semicolons.\n"+
			"By default, ldconfig is searched in the PATH, /sbin, /usr/bin and /usr/sbin.")
}

func AddOutputFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringP("output", "o", "", "Write the result to `file` instead of stdout.")
	return func() {
		ViperMustBindPFlag("output", cmd.Flags().Lookup("output"))
	}
}

func AddFormatFlag(cmd *cobra.Command) func() {
	cmd.Flags().StringP("format", "f", string(config.OutputFormatText),
		"Output `format`, one of: "+strings.Join(config.SupportedOutputFormats, ", ")+".")
	return func() {
		ViperMustBindPFlag("format", cmd.Flags().Lookup("format"))
	}
}

func AddPrefixFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "prefix",
		"A `prefix` for the keywords of the text output, e.g. \"DEP_\" prints\n"+
			"\"-- DEP_RESOLVED <path>\".")
}

func AddCopyToFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "copy-to",
		"Copy all resolved files into `directory`.")
}

func AddArchiveFlag(cmd *cobra.Command) func() {
	return addStringFlag(cmd, "archive",
		"Write a gzip-compressed tar `file` which contains the executables in bin/\n"+
			"and the libraries, modules and resolved files in lib/.")
}

func AddCheckLoaderFlag(cmd *cobra.Command) func() {
	cmd.Flags().Bool("check-loader", false,
		"Compare the result with the libraries the dynamic loader of this\n"+
			"system loads (Linux and FreeBSD only).")
	return func() {
		ViperMustBindPFlag("check-loader", cmd.Flags().Lookup("check-loader"))
	}
}
