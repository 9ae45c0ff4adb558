package resolve

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"code-intelligence.com/runtimedeps/internal/cmdutils"
	"code-intelligence.com/runtimedeps/internal/completion"
	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/internal/runtimedeps"
	"code-intelligence.com/runtimedeps/pkg/artifact"
	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/fileutil"
	"code-intelligence.com/runtimedeps/util/sliceutil"
)

type options struct {
	runtimedeps.Options `mapstructure:",squash"`

	Executables []string `mapstructure:"executables"`
	Libraries   []string `mapstructure:"libraries"`
	Modules     []string `mapstructure:"modules"`

	ConfigFile  string `mapstructure:"config"`
	Output      string `mapstructure:"output"`
	Format      string `mapstructure:"format"`
	Prefix      string `mapstructure:"prefix"`
	CopyTo      string `mapstructure:"copy-to"`
	Archive     string `mapstructure:"archive"`
	CheckLoader bool   `mapstructure:"check-loader"`

	stdout io.Writer
}

func (opts *options) Validate() error {
	if opts.Format == "" {
		opts.Format = string(config.OutputFormatText)
	}
	if !sliceutil.Contains(config.SupportedOutputFormats, opts.Format) {
		msg := `Flag "format" must be one of ` + strings.Join(config.SupportedOutputFormats, ", ")
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	if len(opts.Executables)+len(opts.Libraries)+len(opts.Modules) == 0 {
		msg := "At least one executable, library or module must be specified"
		return cmdutils.WrapIncorrectUsageError(errors.New(msg))
	}

	var err error
	for _, files := range []*[]string{&opts.Executables, &opts.Libraries, &opts.Modules} {
		*files, err = expandGlobs(*files)
		if err != nil {
			log.Error(err)
			return cmdutils.WrapSilentError(err)
		}
	}

	return opts.Options.Validate()
}

type resolveCmd struct {
	*cobra.Command
	opts *options
}

func New() *cobra.Command {
	return newWithOptions(&options{})
}

func newWithOptions(opts *options) *cobra.Command {
	var bindFlags func()
	cmd := &cobra.Command{
		Use:   "resolve [flags] [<executable>...]",
		Short: "Resolve the shared libraries needed at runtime",
		Long: `This command resolves the shared libraries which the given executables,
libraries and modules need at runtime, including transitive dependencies.
Dependencies are searched the way the dynamic loader of the target
platform searches them:

  Linux:   RPATH/RUNPATH (with $ORIGIN) and the ldconfig cache, using objdump
  macOS:   @rpath, @loader_path and @executable_path, using otool
  Windows: the directory of the file and the system directories,
           using dumpbin or objdump

Arguments and the --library and --module flags accept glob patterns.
Options can also be set in a runtimedeps.yaml file, which is searched in
the working directory and its parents, or via RUNTIMEDEPS_* environment
variables, e.g. RUNTIMEDEPS_POST_EXCLUDE_REGEXES.

Dependencies which can't be resolved are listed in the output, they don't
cause the command to fail.`,
		Args: cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind viper keys to flags. We can't do this in the New
			// function, because that would re-bind viper keys which
			// were bound to the flags of other commands before.
			bindFlags()

			err := config.FindAndParseConfig(viper.GetString("config"), opts)
			if err != nil {
				log.Errorf(err, "Failed to parse %s: %v", config.ConfigFileName, err.Error())
				return cmdutils.WrapSilentError(err)
			}
			opts.Executables = append(opts.Executables, args...)
			opts.stdout = cmd.OutOrStdout()

			return opts.Validate()
		},
		RunE: func(c *cobra.Command, args []string) error {
			cmd := resolveCmd{Command: c, opts: opts}
			return cmd.run()
		},
	}

	bindFlags = cmdutils.AddFlags(cmd,
		cmdutils.AddLibraryFlag,
		cmdutils.AddModuleFlag,
		cmdutils.AddDirectoryFlag,
		cmdutils.AddBundleExecutableFlag,
		cmdutils.AddPreIncludeRegexFlag,
		cmdutils.AddPreExcludeRegexFlag,
		cmdutils.AddPostIncludeRegexFlag,
		cmdutils.AddPostExcludeRegexFlag,
		cmdutils.AddPostIncludeFileFlag,
		cmdutils.AddPostExcludeFileFlag,
		cmdutils.AddPostExcludeFileStrictFlag,
		cmdutils.AddPlatformFlag,
		cmdutils.AddToolFlag,
		cmdutils.AddCommandFlag,
		cmdutils.AddObjdumpFlag,
		cmdutils.AddLDConfigFlag,
		cmdutils.AddOutputFlag,
		cmdutils.AddFormatFlag,
		cmdutils.AddPrefixFlag,
		cmdutils.AddCopyToFlag,
		cmdutils.AddArchiveFlag,
		cmdutils.AddCheckLoaderFlag,
	)
	completion.RegisterFlagCompletions(cmd)

	return cmd
}

func (c *resolveCmd) run() error {
	archive, err := runtimedeps.New(&c.opts.Options)
	if err != nil {
		return err
	}

	err = archive.Prepare()
	if err != nil {
		log.Error(err)
		return cmdutils.WrapSilentError(err)
	}

	showSpinner := log.ShouldShowSpinner() && !viper.GetBool("verbose")
	if showSpinner {
		log.CreateCurrentProgressSpinner(nil, log.ResolveInProgressMsg)
	}
	err = archive.GetRuntimeDependencies(c.opts.Executables, c.opts.Libraries, c.opts.Modules)
	if err != nil {
		if showSpinner {
			log.StopCurrentProgressSpinner(log.GetPtermErrorStyle(), log.ResolveInProgressErrorMsg)
		}
		return cmdutils.WrapExecError(err)
	}
	if showSpinner {
		log.StopCurrentProgressSpinner(log.GetPtermSuccessStyle(), log.ResolveInProgressSuccessMsg)
	}

	result := archive.Result()
	for name, paths := range result.Conflicting {
		log.Warnf("%s resolved to multiple files:\n  %s", name, strings.Join(paths, "\n  "))
	}

	if c.opts.CheckLoader && archive.Platform() == config.PlatformLinux {
		c.checkLoader(archive)
	}

	if c.opts.CopyTo != "" {
		err = copyFiles(result.Resolved, c.opts.CopyTo)
		if err != nil {
			return err
		}
		log.Successf("Copied %d files to %s", len(result.Resolved), c.opts.CopyTo)
	}

	if c.opts.Archive != "" {
		libraries := append(append(append([]string{}, c.opts.Libraries...), c.opts.Modules...), result.Resolved...)
		err = artifact.CreateBundle(c.opts.Archive, c.opts.Executables, libraries)
		if err != nil {
			return err
		}
		log.Successf("Created archive %s", c.opts.Archive)
	}

	return c.writeResult(result)
}

func (c *resolveCmd) writeResult(result *runtimedeps.Result) (err error) {
	w := c.opts.stdout
	if w == nil {
		w = c.OutOrStdout()
	}
	if c.opts.Output != "" {
		err = os.MkdirAll(filepath.Dir(c.opts.Output), 0o755)
		if err != nil {
			return errors.WithStack(err)
		}
		var f *os.File
		f, err = os.Create(c.opts.Output)
		if err != nil {
			return errors.WithStack(err)
		}
		defer func() {
			closeErr := f.Close()
			if err == nil {
				err = errors.WithStack(closeErr)
			}
		}()
		w = f
	}
	return printResult(w, config.OutputFormat(c.opts.Format), c.opts.Prefix, result)
}

// expandGlobs replaces the glob patterns in files by the files they
// match. A pattern which doesn't match any file is an error.
func expandGlobs(files []string) ([]string, error) {
	var res []string
	for _, file := range files {
		if !strings.ContainsAny(file, "*?[{") {
			res = append(res, file)
			continue
		}
		matches, err := zglob.Glob(file)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.WithStack(err)
		}
		var matchedFiles []string
		for _, match := range matches {
			if !fileutil.IsDir(match) {
				matchedFiles = append(matchedFiles, match)
			}
		}
		if len(matchedFiles) == 0 {
			return nil, errors.Errorf("No files match %s", file)
		}
		sort.Strings(matchedFiles)
		res = append(res, matchedFiles...)
	}
	return sliceutil.RemoveDuplicates(res), nil
}
