package stringutil

import (
	"strings"

	"github.com/alessio/shellescape"
)

// QuotedStrings returns the strings quoted so that they can be pasted
// into a shell, e.g. to print a command line in debug output.
func QuotedStrings(strs []string) []string {
	quoted := make([]string, 0, len(strs))
	for _, s := range strs {
		quoted = append(quoted, shellescape.Quote(s))
	}
	return quoted
}

// QuotedCommand joins the quoted arguments with spaces.
func QuotedCommand(args []string) string {
	return strings.Join(QuotedStrings(args), " ")
}

// JoinNonEmpty is like strings.Join but skips empty elements.
func JoinNonEmpty(elems []string, sep string) string {
	var nonEmpty []string
	for _, e := range elems {
		if e != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}
	return strings.Join(nonEmpty, sep)
}

// SplitList splits a semicolon separated list (as used by CMake for
// command lines) into its elements. Empty elements are dropped.
func SplitList(list string) []string {
	var res []string
	for _, e := range strings.Split(list, ";") {
		if e != "" {
			res = append(res, e)
		}
	}
	return res
}

// SplitNonEmpty is like strings.Split but drops empty elements.
func SplitNonEmpty(s string, sep string) []string {
	var res []string
	for _, e := range strings.Split(s, sep) {
		if e != "" {
			res = append(res, e)
		}
	}
	return res
}
