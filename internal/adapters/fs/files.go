package fs

import (
	"errors"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*Files)(nil)

// Files implements ports.FileSystem on the local disk.
type Files struct {
	walker *Walker
}

// NewFiles creates a new Files.
func NewFiles(walker *Walker) *Files {
	return &Files{walker: walker}
}

// Walk yields the files below root with one of exts.
func (f *Files) Walk(root string, exts []string) iter.Seq[string] {
	return f.walker.WalkFiles(root, exts)
}

// ReadFile returns the content of path.
func (f *Files) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	return data, nil
}

// CopyFile copies src to dst. A read-only dst is replaced.
func (f *Files) CopyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := f.create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "path", dst)
	}
	return nil
}

// WriteFile writes data to path. An existing path keeps its mode, also when it is read-only.
func (f *Files) WriteFile(path string, data []byte) error {
	var mode os.FileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	out, err := f.create(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}

	if mode != 0 && mode != domain.WritableFilePerm {
		return f.chmod(path, mode)
	}
	return nil
}

// Rewrite reads path, passes its content to fn and writes the result back in place.
// The file is truncated to the new length, so a shorter result leaves no trailing bytes.
func (f *Files) Rewrite(path string, fn func(current []byte) ([]byte, error)) error {
	if err := f.MakeWritable(path); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	defer file.Close() //nolint:errcheck // Close errors are reported below

	current, err := io.ReadAll(file)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	if _, err := file.Write(next); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	if err := file.Truncate(int64(len(next))); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	if err := file.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	return nil
}

func (f *Files) create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	if err := f.MakeWritable(path); err != nil {
		return nil, err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.FilePerm) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	return out, nil
}

// MakeWritable sets the writable mode on path.
func (f *Files) MakeWritable(path string) error {
	return f.chmod(path, domain.WritableFilePerm)
}

// MakeReadOnly sets the read-only mode on path.
func (f *Files) MakeReadOnly(path string) error {
	return f.chmod(path, domain.ReadOnlyFilePerm)
}

func (f *Files) chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrPermissionChangeFailed.Error()), "path", path)
	}
	return nil
}

// MkdirAll creates path and its parents.
func (f *Files) MkdirAll(path string) error {
	if err := os.MkdirAll(path, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	return nil
}

// RemoveAll deletes path recursively. Read-only files below it do not block removal on unix.
func (f *Files) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrIOFailure.Error()), "path", path)
	}
	return nil
}

// Exists reports whether path exists.
func (f *Files) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
