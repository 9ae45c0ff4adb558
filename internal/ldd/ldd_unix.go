//go:build freebsd || linux

package ldd

import (
	"github.com/pkg/errors"
	"github.com/u-root/u-root/pkg/ldd"
)

// LoaderDependencies returns the paths of all shared libraries the
// dynamic loader of this system loads for the given file.
func LoaderDependencies(file string) ([]string, error) {
	// ldd provides the complete list of dynamic dependencies of a dynamically linked file.
	// That is, we don't have to recursively query the transitive dynamic dependencies.
	dependencies, err := ldd.List([]string{file})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return dependencies, nil
}
