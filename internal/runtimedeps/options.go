package runtimedeps

import (
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/util/executil"
	"code-intelligence.com/runtimedeps/util/regexutil"
)

// Options configure a resolution run. The field tags are the keys of
// the runtimedeps.yaml config file and of the environment variables.
type Options struct {
	// Fallback directories, a dependency found only in one of these is
	// resolved with a warning
	Directories      []string `mapstructure:"directories"`
	BundleExecutable string   `mapstructure:"bundle-executable"`

	PreIncludeRegexes  []string `mapstructure:"pre-include-regexes"`
	PreExcludeRegexes  []string `mapstructure:"pre-exclude-regexes"`
	PostIncludeRegexes []string `mapstructure:"post-include-regexes"`
	PostExcludeRegexes []string `mapstructure:"post-exclude-regexes"`

	PostIncludeFiles       []string `mapstructure:"post-include-files"`
	PostExcludeFiles       []string `mapstructure:"post-exclude-files"`
	PostExcludeFilesStrict []string `mapstructure:"post-exclude-files-strict"`

	Platform string `mapstructure:"platform"`
	Tool     string `mapstructure:"tool"`
	// Semicolon separated command line replacing the introspection
	// tool, e.g. "xcrun;otool"
	Command  string `mapstructure:"command"`
	Objdump  string `mapstructure:"objdump"`
	LDConfig string `mapstructure:"ldconfig"`

	// Runs the external tools, defaults to executil.Output
	Runner executil.Runner `mapstructure:"-"`
}

type patterns struct {
	preInclude  []*regexp.Regexp
	preExclude  []*regexp.Regexp
	postInclude []*regexp.Regexp
	postExclude []*regexp.Regexp
}

// Validate checks that all regular expressions compile and makes the
// search directories, the bundle executable and the file lists absolute.
func (opts *Options) Validate() error {
	_, err := opts.compile()
	if err != nil {
		return err
	}

	if opts.BundleExecutable != "" {
		opts.BundleExecutable, err = filepath.Abs(opts.BundleExecutable)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	for _, files := range []*[]string{&opts.Directories, &opts.PostIncludeFiles, &opts.PostExcludeFiles, &opts.PostExcludeFilesStrict} {
		*files, err = absPaths(*files)
		if err != nil {
			return err
		}
	}
	return nil
}

func (opts *Options) compile() (*patterns, error) {
	var p patterns
	var err error
	for _, c := range []struct {
		dst  *[]*regexp.Regexp
		src  []string
		name string
	}{
		{&p.preInclude, opts.PreIncludeRegexes, "pre-include-regexes"},
		{&p.preExclude, opts.PreExcludeRegexes, "pre-exclude-regexes"},
		{&p.postInclude, opts.PostIncludeRegexes, "post-include-regexes"},
		{&p.postExclude, opts.PostExcludeRegexes, "post-exclude-regexes"},
	} {
		*c.dst, err = regexutil.CompileAll(c.src)
		if err != nil {
			return nil, errors.WithMessage(err, c.name)
		}
	}
	return &p, nil
}

func absPaths(paths []string) ([]string, error) {
	res := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		res = append(res, abs)
	}
	return res, nil
}
