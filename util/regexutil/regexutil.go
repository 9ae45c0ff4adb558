package regexutil

import (
	"regexp"

	"github.com/pkg/errors"
)

// FindNamedGroupsMatch finds a match using a regex with named groups and returns
// a map representing the values of the sub-matches as key-value pairs.
func FindNamedGroupsMatch(regexp *regexp.Regexp, text string) (map[string]string, bool) {
	if match := regexp.FindStringSubmatch(text); match != nil {
		result := make(map[string]string)
		for i, name := range regexp.SubexpNames() {
			if i != 0 && name != "" {
				result[name] = match[i]
			}
		}
		return result, true
	}
	return nil, false
}

// CompileAll compiles all patterns. The error names the first pattern
// which failed to compile.
func CompileAll(patterns []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid regular expression %q", pattern)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

// MatchAny returns true if any of the regexes matches somewhere in text.
func MatchAny(regexes []*regexp.Regexp, text string) bool {
	for _, re := range regexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
