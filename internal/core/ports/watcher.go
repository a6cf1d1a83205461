package ports

import (
	"context"
	"iter"
	"time"
)

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed away. The new name arrives as a create.
	OpRename
)

// WatchEvent represents a file system event from the watcher.
type WatchEvent struct {
	// Path is the absolute path of the file or directory that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Watcher defines the interface for watching file system changes.
type Watcher interface {
	// Start begins watching the given root directory recursively.
	// It returns an error if the watcher fails to start.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file system events.
	Events() iter.Seq[WatchEvent]
}

// Debouncer coalesces bursts of paths into one callback per quiet window.
type Debouncer interface {
	// Add schedules path for the next flush.
	Add(path string)
	// Flush delivers pending paths immediately.
	Flush()
}

// WatcherFactory creates a Watcher. Watchers hold OS resources, so they are only created by
// commands that watch.
type WatcherFactory func() (Watcher, error)

// DebouncerFactory builds a Debouncer delivering batches to callback.
type DebouncerFactory func(window time.Duration, callback func(paths []string)) Debouncer

// SuppressionSet remembers files the pipeline wrote itself so that the echo event is not reprocessed.
type SuppressionSet interface {
	// Add marks path as written by the pipeline.
	Add(path string)
	// Consume reports whether path was marked and unmarks it. Expired marks are not reported.
	Consume(path string) bool
}
