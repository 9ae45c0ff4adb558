package runtimedeps

// TargetType is the role of a file passed to a Linker.
type TargetType int

const (
	Executable TargetType = iota
	SharedLibrary
	ModuleLibrary
)

func (t TargetType) String() string {
	switch t {
	case Executable:
		return "executable"
	case SharedLibrary:
		return "shared library"
	case ModuleLibrary:
		return "module library"
	}
	return "unknown"
}

// Linker emulates the dynamic loader of one platform. It reports every
// dependency it finds to the Archive it was created for and recurses
// into the dependencies the Archive hasn't seen before.
type Linker interface {
	// Prepare selects the introspection tool. It must be called once
	// before ScanDependencies.
	Prepare() error
	ScanDependencies(file string, targetType TargetType) error
}
