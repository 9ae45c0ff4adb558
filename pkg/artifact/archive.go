package artifact

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"code-intelligence.com/runtimedeps/pkg/log"
	"code-intelligence.com/runtimedeps/util/fileutil"
)

const (
	// BinDir is the directory in the archive that contains executables.
	BinDir = "bin"
	// LibDir is the directory in the archive that contains libraries,
	// modules and their resolved runtime dependencies.
	LibDir = "lib"
)

// ArchiveWriter provides functions to create a gzip-compressed tar archive.
type ArchiveWriter struct {
	*tar.Writer
	manifest   map[string]string
	gzipWriter *gzip.Writer
}

func NewArchiveWriter(w io.Writer) *ArchiveWriter {
	gzipWriter := gzip.NewWriter(w)
	return &ArchiveWriter{
		Writer:     tar.NewWriter(gzipWriter),
		manifest:   make(map[string]string),
		gzipWriter: gzipWriter,
	}
}

// Close closes the tar writer and the gzip writer. It does not close
// the underlying io.Writer.
func (w *ArchiveWriter) Close() error {
	err := w.Writer.Close()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(w.gzipWriter.Close())
}

// WriteFile writes the contents of sourcePath to the archive under
// archivePath. Symlinks are followed, so the archive never contains
// links pointing outside of it. Adding the same file twice under the
// same path is a no-op, adding two different files under the same path
// is an error.
func (w *ArchiveWriter) WriteFile(archivePath string, sourcePath string) error {
	archivePath = filepath.ToSlash(archivePath)
	if existing, conflict := w.manifest[archivePath]; conflict {
		if fileutil.SameFile(existing, sourcePath) {
			log.Debugf("Skipping file %q, was already added to the archive", sourcePath)
			return nil
		}
		return errors.Errorf("archive path %q has two source files: %q and %q", archivePath, existing, sourcePath)
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.WithStack(err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("not a regular file: %s", sourcePath)
	}

	// os.File.Stat follows symlinks, so info never describes a link here.
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return errors.WithStack(err)
	}
	header.Name = archivePath
	err = w.WriteHeader(header)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = io.Copy(w.Writer, f)
	if err != nil {
		return errors.Wrapf(err, "failed to add file to archive: %s", sourcePath)
	}

	w.manifest[archivePath] = sourcePath
	return nil
}

// WriteBundle adds the executables to BinDir and the libraries to
// LibDir, each under its base name.
func (w *ArchiveWriter) WriteBundle(executables, libraries []string) error {
	for _, file := range executables {
		err := w.WriteFile(filepath.Join(BinDir, filepath.Base(file)), file)
		if err != nil {
			return err
		}
	}
	for _, file := range libraries {
		err := w.WriteFile(filepath.Join(LibDir, filepath.Base(file)), file)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *ArchiveWriter) GetSourcePath(archivePath string) string {
	return w.manifest[filepath.ToSlash(archivePath)]
}

func (w *ArchiveWriter) HasFileEntry(archivePath string) bool {
	_, exists := w.manifest[filepath.ToSlash(archivePath)]
	return exists
}

// CreateBundle writes a gzip-compressed tar archive to path which
// contains the executables and libraries as laid out by WriteBundle.
func CreateBundle(path string, executables, libraries []string) (err error) {
	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return errors.WithStack(err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = errors.WithStack(closeErr)
		}
	}()

	w := NewArchiveWriter(f)
	err = w.WriteBundle(executables, libraries)
	if err != nil {
		return err
	}
	return w.Close()
}
