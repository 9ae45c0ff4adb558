//go:build !windows

package runtimedeps

// The Visual Studio registry only exists on Windows
func visualStudioToolDirs() []string {
	return nil
}
