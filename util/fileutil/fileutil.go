package fileutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// IsDir returns whether this path is a directory. Tries to behave the
// same as Python's pathlib.Path.is_dir()
func IsDir(path string) bool {
	f, err := os.Stat(path)
	if err != nil {
		return false
	}
	return f.Mode()&os.ModeDir != 0
}

// Touch creates a file at the given path
func Touch(path string) error {
	file, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return errors.WithStack(err)
	}
	err = file.Close()
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, errors.WithStack(err)
	}
	return !errors.Is(err, os.ErrNotExist), nil
}

// PathExists is like Exists but treats any error as the path not
// existing, e.g. when a component of the path is not a directory.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SameFile reports whether both paths refer to the same underlying
// file, following symlinks. Paths which are equal after cleaning are
// always the same file, even if they don't exist.
func SameFile(path1, path2 string) bool {
	if filepath.Clean(path1) == filepath.Clean(path2) {
		return true
	}
	info1, err := os.Stat(path1)
	if err != nil {
		return false
	}
	info2, err := os.Stat(path2)
	if err != nil {
		return false
	}
	return os.SameFile(info1, info2)
}

// FindCaseInsensitive looks for an entry of dir whose name is equal to
// name under Unicode case folding and returns its path. The exact name
// is preferred if it exists.
func FindCaseInsensitive(dir, name string) (string, bool) {
	exact := filepath.Join(dir, name)
	if PathExists(exact) {
		return exact, true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), name) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

// PrettifyPath prints a possibly shortened path for display purposes.
// If path is located under the current working directory, the relative path to
// it is returned, otherwise or in case of an error the path is returned
// unchanged.
func PrettifyPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, filepath.FromSlash("../")) {
		return path
	}
	return rel
}

// SearchFileBackwards searches for a file by going backwards/upwards
// from a given path
// if a path `/foo/bar` is given the order of search is
//  1. /foo/bar
//  2. /foo/
//  3. /
func SearchFileBackwards(start, filename string) (string, error) {
	currentDir := start
	for {
		filePath := filepath.Join(currentDir, filename)
		exists, err := Exists(filePath)
		if err != nil {
			return "", errors.WithStack(err)
		}
		if exists {
			return filePath, nil
		}

		// if the root directory is reached stop the search
		if currentDir == filepath.Dir(currentDir) {
			break
		}

		// step one dir up
		currentDir = filepath.Dir(currentDir)
	}

	return "", os.ErrNotExist
}
