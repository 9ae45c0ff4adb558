package mocks

import (
	"github.com/stretchr/testify/mock"

	"code-intelligence.com/runtimedeps/internal/ldd"
	"code-intelligence.com/runtimedeps/internal/tools"
)

type ELFToolMock struct {
	mock.Mock
}

var _ tools.ELFTool = (*ELFToolMock)(nil)

func (m *ELFToolMock) GetFileInfo(file string) (*tools.ELFFileInfo, error) {
	args := m.Called(file)
	info, _ := args.Get(0).(*tools.ELFFileInfo)
	return info, args.Error(1)
}

type MachOToolMock struct {
	mock.Mock
}

var _ tools.MachOTool = (*MachOToolMock)(nil)

func (m *MachOToolMock) GetFileInfo(file string) (*tools.MachOFileInfo, error) {
	args := m.Called(file)
	info, _ := args.Get(0).(*tools.MachOFileInfo)
	return info, args.Error(1)
}

type PEToolMock struct {
	mock.Mock
}

var _ tools.PETool = (*PEToolMock)(nil)

func (m *PEToolMock) GetFileInfo(file string) ([]string, error) {
	args := m.Called(file)
	dlls, _ := args.Get(0).([]string)
	return dlls, args.Error(1)
}

type SystemLibraryPathProviderMock struct {
	mock.Mock
}

var _ ldd.SystemLibraryPathProvider = (*SystemLibraryPathProviderMock)(nil)

func (m *SystemLibraryPathProviderMock) LibraryPaths() ([]string, error) {
	args := m.Called()
	paths, _ := args.Get(0).([]string)
	return paths, args.Error(1)
}
