package domain

import (
	"maps"
	"path/filepath"
	"strings"
)

// Checksums maps a normalized source path to the hex digest of its content.
// A path whose stored digest equals its current digest needs no conversion.
type Checksums map[string]string

// NewChecksums returns an empty cache.
func NewChecksums() Checksums {
	return make(Checksums)
}

// Matches reports whether the cache holds exactly hash for key.
func (c Checksums) Matches(key, hash string) bool {
	stored, ok := c[key]
	return ok && stored == hash
}

// Clone returns an independent copy, used as the read-only snapshot handed to workers.
func (c Checksums) Clone() Checksums {
	if c == nil {
		return NewChecksums()
	}
	return maps.Clone(c)
}

// Merge folds delta into the cache. Entries of delta win over existing entries.
// It returns the receiver to allow chaining; a nil receiver yields a new cache.
func (c Checksums) Merge(delta Checksums) Checksums {
	if c == nil {
		c = NewChecksums()
	}
	maps.Copy(c, delta)
	return c
}

// ChecksumKey normalizes path into the cache key: relative to root when possible, slash separated.
func ChecksumKey(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
