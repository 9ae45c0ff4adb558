package runtimedeps

import "github.com/pkg/errors"

var (
	ErrArchitectureMismatch = errors.New("All files must have the same architecture")
	ErrInvalidPlatform      = errors.New("invalid platform")
	ErrInvalidTool          = errors.New("invalid tool")
	ErrPathDependency       = errors.New("dependency names must not contain a path")
	ErrToolNotFound         = errors.New("tool not found")
)
