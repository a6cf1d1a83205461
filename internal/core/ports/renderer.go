package ports

import (
	"context"
	"time"
)

// Renderer is the abstraction for progress output.
// The same stage events drive either the interactive progress view or linear CI logs.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush its output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnStageStart is called when a stage begins.
	// total is the number of items the stage will process.
	OnStageStart(stage string, total int, startTime time.Time)

	// OnItemComplete is called when one item of a stage finishes.
	// err is nil if the item succeeded.
	OnItemComplete(stage, item string, endTime time.Time, err error)

	// OnStageComplete is called when a stage finishes.
	// err is non-nil if the stage aborted.
	OnStageComplete(stage string, endTime time.Time, err error)
}
