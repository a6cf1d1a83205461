// Package cas persists the content checksum cache and guards the workspace with a file lock.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ChecksumStore = (*Store)(nil)

// Store implements ports.ChecksumStore using a flat JSON file.
type Store struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewStore creates a new ChecksumStore backed by the file at path, locked through lockPath.
func NewStore(path, lockPath string) *Store {
	return &Store{
		path: filepath.Clean(path),
		lock: flock.New(filepath.Clean(lockPath)),
	}
}

// Load reads the cache. A missing or empty file yields an empty cache.
func (s *Store) Load() (domain.Checksums, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewChecksums(), nil
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}

	if len(data) == 0 {
		return domain.NewChecksums(), nil
	}

	sums := domain.NewChecksums()
	if err := json.Unmarshal(data, &sums); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheUnmarshalFailed.Error())
	}
	return sums, nil
}

// Save writes the cache to a temporary file and renames it over the previous one.
func (s *Store) Save(sums domain.Checksums) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sums == nil {
		sums = domain.NewChecksums()
	}
	data, err := json.MarshalIndent(sums, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	return nil
}

// Acquire takes the workspace lock without blocking.
func (s *Store) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(s.lock.Path()), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheCreateFailed.Error())
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return zerr.Wrap(err, domain.ErrLockFailed.Error())
	}
	if !ok {
		return zerr.With(domain.ErrLocked, "lock", s.lock.Path())
	}
	return nil
}

// Release drops the workspace lock.
func (s *Store) Release() error {
	if err := s.lock.Unlock(); err != nil {
		return zerr.Wrap(err, domain.ErrLockFailed.Error())
	}
	return nil
}
