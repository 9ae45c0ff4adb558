package runtimedeps

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// Versions of Visual Studio installations which register their install
// directory under SOFTWARE\Microsoft\VisualStudio\<version>
var legacyVisualStudioVersions = []string{"14.0", "12.0", "11.0", "10.0", "9.0", "8.0"}

// visualStudioToolDirs returns the directories of Visual Studio
// installations which contain dumpbin, newest installation first.
func visualStudioToolDirs() []string {
	var dirs []string

	// Set in a developer command prompt
	if dir := os.Getenv("VCToolsInstallDir"); dir != "" {
		dirs = append(dirs, hostBinDirs(dir)...)
	}
	for _, env := range []string{"VS170COMNTOOLS", "VS160COMNTOOLS", "VS150COMNTOOLS"} {
		// <install dir>\Common7\Tools\
		if dir := os.Getenv(env); dir != "" {
			dirs = append(dirs, msvcToolDirs(filepath.Join(dir, "..", ".."))...)
		}
	}

	dirs = append(dirs, sxsToolDirs()...)

	for _, version := range legacyVisualStudioVersions {
		installDir, ok := readRegistryString(`SOFTWARE\Microsoft\VisualStudio\`+version, "InstallDir")
		if ok {
			// <install dir> is <root>\Common7\IDE\
			dirs = append(dirs, filepath.Join(installDir, "..", "..", "VC", "bin"))
		}
	}
	return dirs
}

func sxsToolDirs() []string {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\VisualStudio\SxS\VS7`, registry.QUERY_VALUE|registry.WOW64_32KEY)
	if err != nil {
		return nil
	}
	defer key.Close()

	versions, err := key.ReadValueNames(0)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, version := range sortByVersionDescending(versions, func(s string) string { return s }) {
		installDir, _, err := key.GetStringValue(version)
		if err != nil {
			continue
		}
		dirs = append(dirs, msvcToolDirs(installDir)...)
	}
	return dirs
}

func readRegistryString(path, name string) (string, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE|registry.WOW64_32KEY)
	if err != nil {
		return "", false
	}
	defer key.Close()
	value, _, err := key.GetStringValue(name)
	if err != nil {
		return "", false
	}
	return value, true
}
