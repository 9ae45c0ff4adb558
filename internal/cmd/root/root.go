package root

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"code-intelligence.com/runtimedeps/internal/cmd/resolve"
	"code-intelligence.com/runtimedeps/internal/cmdutils"
	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/pkg/log"
)

func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runtimedeps",
		Short: "Resolve the shared libraries binaries need at runtime",
		Long: `runtimedeps finds all shared libraries which executables, libraries and
modules need at runtime, so that they can be bundled with an application.
It emulates the dynamic loaders of Linux, macOS and Windows.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Debugf("Command: %s", cmd.CommandPath())
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show more verbose output, can be helpful for debugging problems")
	cmdutils.ViperMustBindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.PersistentFlags().StringP("config", "c", "",
		"Read options from `file` instead of the "+config.ConfigFileName+" found in the\n"+
			"working directory or one of its parents.")
	cmdutils.ViperMustBindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(resolve.New())

	return rootCmd
}

func Execute() {
	config.Init()

	cmd, err := New().ExecuteC()
	if err == nil {
		return
	}

	var usageErr *cmdutils.IncorrectUsageError
	var silentErr *cmdutils.SilentError
	var execErr *cmdutils.ExecError
	switch {
	case errors.As(err, &usageErr):
		log.Error(err)
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), cmd.UsageString())
	case errors.As(err, &silentErr):
		// Already printed
	case errors.As(err, &execErr):
		log.Error(err)
		if execErr.Stderr != "" {
			log.Print(execErr.Stderr)
		}
	default:
		log.Error(err)
	}
	os.Exit(1)
}
