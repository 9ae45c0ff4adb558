package completion

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/pkg/log"
)

// fixedValues returns a cobra completion function which completes the
// values with the given prefix.
func fixedValues(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var res []string
		for _, value := range values {
			if strings.HasPrefix(value, toComplete) {
				res = append(res, value)
			}
		}
		return res, cobra.ShellCompDirectiveNoFileComp
	}
}

// ValidPlatforms completes the --platform flag.
var ValidPlatforms = fixedValues(config.SupportedPlatforms)

// ValidTools completes the --tool flag.
var ValidTools = fixedValues(config.SupportedTools)

// ValidOutputFormats completes the --format flag.
var ValidOutputFormats = fixedValues(config.SupportedOutputFormats)

// RegisterFlagCompletions registers the completion functions for those
// of the flags which exist on cmd.
func RegisterFlagCompletions(cmd *cobra.Command) {
	funcs := map[string]func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective){
		"platform": ValidPlatforms,
		"tool":     ValidTools,
		"format":   ValidOutputFormats,
	}
	for name, f := range funcs {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		err := cmd.RegisterFlagCompletionFunc(name, f)
		if err != nil {
			log.Debugf("Failed to register completion for --%s: %v", name, errors.WithStack(err))
		}
	}
}
