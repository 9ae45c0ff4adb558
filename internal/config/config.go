package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/fileutil"
)

const (
	ConfigFileName = "runtimedeps.yaml"
	EnvPrefix      = "RUNTIMEDEPS"
)

// Init makes viper read settings from RUNTIMEDEPS_* environment
// variables, e.g. RUNTIMEDEPS_POST_EXCLUDE_REGEXES for the
// "post-exclude-regexes" key.
func Init() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// FindConfigFile searches runtimedeps.yaml in dir and its parents.
// An empty string is returned if there is none.
func FindConfigFile(dir string) (string, error) {
	path, err := fileutil.SearchFileBackwards(dir, ConfigFileName)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// FindAndParseConfig merges the config file (either the explicitly
// specified one or the first runtimedeps.yaml found upwards from the
// working directory) into viper and unmarshals all settings into opts.
// Values from flags and environment variables take precedence.
func FindAndParseConfig(configFile string, opts any) error {
	if configFile == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.WithStack(err)
		}
		configFile, err = FindConfigFile(cwd)
		if err != nil {
			return err
		}
	}

	if configFile != "" {
		log.Debugf("Reading config file %s", configFile)
		viper.SetConfigFile(configFile)
		viper.SetConfigType("yaml")
		err := viper.MergeInConfig()
		if err != nil {
			return errors.WithStack(err)
		}
	}

	err := viper.Unmarshal(opts)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
