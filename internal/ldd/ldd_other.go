//go:build !freebsd && !linux

package ldd

import (
	"runtime"

	"github.com/pkg/errors"
)

var ErrLoaderUnsupported = errors.New("loader check is only supported on Linux and FreeBSD")

func LoaderDependencies(file string) ([]string, error) {
	return nil, errors.Wrapf(ErrLoaderUnsupported, "%s on %s", file, runtime.GOOS)
}
