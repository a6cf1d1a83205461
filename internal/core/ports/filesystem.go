package ports

import "iter"

// FileSystem groups the file operations the pipeline performs on the source and output trees.
type FileSystem interface {
	// Walk yields the regular files below root whose extension is one of exts, in lexical order.
	// An empty exts yields every file.
	Walk(root string, exts []string) iter.Seq[string]
	// ReadFile returns the content of path.
	ReadFile(path string) ([]byte, error)
	// CopyFile copies src to dst, creating parent directories and replacing a read-only dst.
	CopyFile(src, dst string) error
	// WriteFile writes data to path, creating parent directories. An existing path keeps its
	// mode, so rewriting a source file never changes its permissions.
	WriteFile(path string, data []byte) error
	// Rewrite replaces the content of the existing file at path with the result of fn,
	// reading and writing through one open handle.
	Rewrite(path string, fn func(current []byte) ([]byte, error)) error
	// MakeWritable clears the read-only mode of path. A missing path is not an error.
	MakeWritable(path string) error
	// MakeReadOnly sets the read-only mode of path. A missing path is not an error.
	MakeReadOnly(path string) error
	// MkdirAll creates the directory path and any missing parents.
	MkdirAll(path string) error
	// RemoveAll deletes path and everything below it.
	RemoveAll(path string) error
	// Exists reports whether path exists.
	Exists(path string) bool
}
