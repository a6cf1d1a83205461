package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"

	"go.trai.ch/kiln/internal/core/ports"
)

// DefaultDebounceWindow is the default quiet period before a batch is dispatched.
const DefaultDebounceWindow = 500 * time.Millisecond

var _ ports.Debouncer = (*Debouncer)(nil)

// Debouncer coalesces rapid file system events into batches of unique paths.
// Batches are delivered one at a time, in the order their paths were added.
type Debouncer struct {
	mu       sync.Mutex
	pending  map[unique.Handle[string]]struct{}
	timer    *time.Timer
	window   time.Duration
	callback func(paths []string)
	// delivering holds a token while a batch is drained and delivered.
	delivering chan struct{}
}

// NewDebouncer creates a new debouncer with the given time window and callback.
// Batches are delivered in lexical order.
func NewDebouncer(window time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		pending:    make(map[unique.Handle[string]]struct{}),
		window:     window,
		callback:   callback,
		delivering: make(chan struct{}, 1),
	}
}

// NewDebouncerFactory returns a ports.DebouncerFactory building Debouncers.
func NewDebouncerFactory() ports.DebouncerFactory {
	return func(window time.Duration, callback func(paths []string)) ports.Debouncer {
		return NewDebouncer(window, callback)
	}
}

// Add adds a file path to the pending set and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(path)] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// fire is called when the debounce window expires. It waits for the previous batch to be
// delivered before draining, so a later batch never overtakes an earlier one.
func (d *Debouncer) fire() {
	d.deliver(false)
}

// Flush delivers all pending paths and blocks until the callback returns.
func (d *Debouncer) Flush() {
	d.deliver(true)
}

func (d *Debouncer) deliver(stop bool) {
	d.delivering <- struct{}{}
	defer func() { <-d.delivering }()

	d.mu.Lock()
	if stop && d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	paths := d.drain()
	d.mu.Unlock()

	if len(paths) > 0 && d.callback != nil {
		d.callback(paths)
	}
}

// drain empties the pending set. The caller holds mu.
func (d *Debouncer) drain() []string {
	if len(d.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.pending))
	for handle := range d.pending {
		paths = append(paths, handle.Value())
	}
	clear(d.pending)
	slices.Sort(paths)
	return paths
}
