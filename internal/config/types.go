package config

// Platform is the target platform whose dynamic loader is emulated.
type Platform string

const (
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
)

// Tool is the binary introspection tool used to read the dynamic
// linking information of a file.
type Tool string

const (
	ToolObjdump Tool = "objdump"
	ToolOTool   Tool = "otool"
	ToolDumpbin Tool = "dumpbin"
)

// Format is the file format of the binaries of a platform.
type Format string

const (
	FormatELF   Format = "elf"
	FormatMachO Format = "macho"
	FormatPE    Format = "pe"
)

// OutputFormat is the format in which resolve results are printed.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

var (
	SupportedPlatforms     = []string{string(PlatformLinux), string(PlatformMacOS), string(PlatformWindows)}
	SupportedTools         = []string{string(ToolObjdump), string(ToolOTool), string(ToolDumpbin)}
	SupportedOutputFormats = []string{string(OutputFormatText), string(OutputFormatJSON), string(OutputFormatYAML)}
)

// FormatOf returns the binary format of the platform.
func FormatOf(platform Platform) (Format, bool) {
	switch platform {
	case PlatformLinux:
		return FormatELF, true
	case PlatformMacOS:
		return FormatMachO, true
	case PlatformWindows:
		return FormatPE, true
	}
	return "", false
}
