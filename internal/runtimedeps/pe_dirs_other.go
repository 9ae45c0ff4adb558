//go:build !windows

package runtimedeps

func windowsSystemDirectories() []string {
	return nil
}
