// Package fs provides file system adapters for walking, hashing and copying files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the files below root whose extension is in exts, skipping VCS directories.
// Extensions match case-insensitively. An empty exts yields every file.
// filepath.WalkDir visits entries in lexical order, so the sequence is deterministic.
func (w *Walker) WalkFiles(root string, exts []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// A missing root yields nothing.
				return nil //nolint:nilerr // Unreadable entries are skipped
			}

			if d.IsDir() {
				if w.shouldSkipDir(d.Name()) && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if !w.matches(path, exts) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkipDir(name string) bool {
	return name == ".git" || name == ".jj"
}

func (w *Walker) matches(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}
