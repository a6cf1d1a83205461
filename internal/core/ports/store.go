package ports

import "go.trai.ch/kiln/internal/core/domain"

// ChecksumStore persists the checksum cache between runs and guards the workspace.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ChecksumStore interface {
	// Load reads the persisted cache. A missing cache yields an empty one.
	Load() (domain.Checksums, error)
	// Save replaces the persisted cache atomically.
	Save(sums domain.Checksums) error
	// Acquire takes the workspace lock without blocking.
	// It returns domain.ErrLocked when another process holds it.
	Acquire() error
	// Release drops the workspace lock.
	Release() error
}
