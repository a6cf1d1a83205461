package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/core/ports"
)

// DefaultSuppressionTTL is how long a self-write mark waits for its echo event.
const DefaultSuppressionTTL = 5 * time.Second

var _ ports.SuppressionSet = (*SuppressionSet)(nil)

// SuppressionSet records files the pipeline rewrote itself. Each mark is consumed by the
// first matching event and expires after the TTL so a lost event cannot mask a later edit.
type SuppressionSet struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// NewSuppressionSet creates an empty set whose marks live for ttl.
func NewSuppressionSet(ttl time.Duration) *SuppressionSet {
	return &SuppressionSet{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

// Add marks path as written by the pipeline.
func (s *SuppressionSet) Add(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evict(now)
	s.entries[filepath.Clean(path)] = now.Add(s.ttl)
}

// Consume reports whether path carries a live mark and removes it.
func (s *SuppressionSet) Consume(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := filepath.Clean(path)
	expiry, ok := s.entries[key]
	if !ok {
		return false
	}
	delete(s.entries, key)
	return s.now().Before(expiry)
}

// Len returns the number of marks, expired ones included.
func (s *SuppressionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SuppressionSet) evict(now time.Time) {
	for path, expiry := range s.entries {
		if !now.Before(expiry) {
			delete(s.entries, path)
		}
	}
}
