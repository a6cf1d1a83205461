// Package scheduler runs the items of a pipeline stage on a bounded worker pool.
package scheduler

import (
	"context"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Scheduler bounds how many stage items run at once and traces every stage and item.
type Scheduler struct {
	tracer      ports.Tracer
	parallelism int
}

// New creates a Scheduler. A parallelism below one uses one worker per CPU.
func New(tracer ports.Tracer, parallelism int) *Scheduler {
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}
	return &Scheduler{tracer: tracer, parallelism: parallelism}
}

// Parallelism returns the worker pool size.
func (s *Scheduler) Parallelism() int {
	return s.parallelism
}

// Stage describes one batch of independent items.
type Stage[T, R any] struct {
	// Name labels the stage in progress output.
	Name string
	// Items are the inputs of the stage.
	Items []T
	// Label names an item in progress output.
	Label func(item T) string
	// Work converts one item. A returned error is fatal: it stops the stage
	// from starting further items and is returned by Run.
	Work func(ctx context.Context, item T) (R, error)
	// Failure extracts the soft failure of a result for progress output. Optional.
	Failure func(res R) error
}

type outcome[T, R any] struct {
	item T
	res  R
}

// Run executes the stage on the pool. Results are handed to fold on the calling
// goroutine in completion order, so fold may mutate state owned by the caller.
func Run[T, R any](ctx context.Context, s *Scheduler, stage Stage[T, R], fold func(item T, res R)) error {
	ctx, span := s.tracer.Start(ctx, stage.Name,
		ports.WithAttribute(domain.AttrStage, stage.Name),
		ports.WithAttribute(domain.AttrTotal, len(stage.Items)),
	)
	defer span.End()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	results := make(chan outcome[T, R])
	waitErr := make(chan error, 1)

	go func() {
		for _, item := range stage.Items {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				res, err := runItem(gctx, s.tracer, stage, item)
				if err != nil {
					return err
				}
				select {
				case results <- outcome[T, R]{item: item, res: res}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		waitErr <- g.Wait()
		close(results)
	}()

	for o := range results {
		fold(o.item, o.res)
	}

	err := <-waitErr
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func runItem[T, R any](ctx context.Context, tracer ports.Tracer, stage Stage[T, R], item T) (R, error) {
	label := stage.Name
	if stage.Label != nil {
		label = stage.Label(item)
	}

	ctx, span := tracer.Start(ctx, label,
		ports.WithAttribute(domain.AttrStage, stage.Name),
		ports.WithAttribute(domain.AttrItem, label),
	)
	defer span.End()

	res, err := stage.Work(ctx, item)
	if err != nil {
		span.RecordError(err)
		return res, err
	}
	if stage.Failure != nil {
		if failure := stage.Failure(res); failure != nil {
			span.RecordError(failure)
		}
	}
	return res, nil
}
