package resolve

import (
	"fmt"
	"io"
	"os"

	"github.com/hokaccha/go-prettyjson"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"code-intelligence.com/runtimedeps/internal/config"
	"code-intelligence.com/runtimedeps/internal/runtimedeps"
)

func printResult(w io.Writer, format config.OutputFormat, prefix string, result *runtimedeps.Result) error {
	switch format {
	case config.OutputFormatJSON:
		return printJSON(w, result)
	case config.OutputFormatYAML:
		return printYAML(w, result)
	default:
		return printText(w, prefix, result)
	}
}

// printText prints one line per file or name, in the format of CMake
// status messages:
//
//	-- RESOLVED /usr/lib/libfoo.so.1
//	-- CONFLICTING libbar.so
//	--   /opt/a/libbar.so
//	--   /opt/b/libbar.so
//	-- UNRESOLVED libbaz.so
func printText(w io.Writer, prefix string, result *runtimedeps.Result) error {
	for _, path := range result.Resolved {
		_, err := fmt.Fprintf(w, "-- %sRESOLVED %s\n", prefix, path)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	names := maps.Keys(result.Conflicting)
	slices.Sort(names)
	for _, name := range names {
		_, err := fmt.Fprintf(w, "-- %sCONFLICTING %s\n", prefix, name)
		if err != nil {
			return errors.WithStack(err)
		}
		for _, path := range result.Conflicting[name] {
			_, err = fmt.Fprintf(w, "--   %s\n", path)
			if err != nil {
				return errors.WithStack(err)
			}
		}
	}

	for _, name := range result.Unresolved {
		_, err := fmt.Fprintf(w, "-- %sUNRESOLVED %s\n", prefix, name)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func printJSON(w io.Writer, result *runtimedeps.Result) error {
	formatter := prettyjson.NewFormatter()
	formatter.Indent = 2
	// Only colorize the output when it's printed to a terminal
	f, ok := w.(*os.File)
	formatter.DisabledColor = !ok || !term.IsTerminal(int(f.Fd()))

	out, err := formatter.Marshal(result)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = w.Write(append(out, '\n'))
	return errors.WithStack(err)
}

func printYAML(w io.Writer, result *runtimedeps.Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	err := encoder.Encode(result)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(encoder.Close())
}
