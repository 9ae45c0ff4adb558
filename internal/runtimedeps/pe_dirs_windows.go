package runtimedeps

import (
	"golang.org/x/sys/windows"

	"code-intelligence.com/runtimedeps/pkg/log"
)

// windowsSystemDirectories returns the System32 and the Windows
// directory, in the order the DLL search uses them.
func windowsSystemDirectories() []string {
	var dirs []string
	systemDir, err := windows.GetSystemDirectory()
	if err != nil {
		log.Debugf("Failed to get system directory: %v", err)
	} else {
		dirs = append(dirs, systemDir)
	}
	windowsDir, err := windows.GetWindowsDirectory()
	if err != nil {
		log.Debugf("Failed to get Windows directory: %v", err)
	} else {
		dirs = append(dirs, windowsDir)
	}
	return dirs
}
