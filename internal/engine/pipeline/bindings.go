package pipeline

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/scheduler"
)

type bindingsResult struct {
	written bool
	err     string
}

// GenerateBindings renders the binding file from the index and writes it when it changed.
// A missing template or a failed write is recorded, never fatal.
func (o *Orchestrator) GenerateBindings(ctx context.Context) (domain.StageResult, error) {
	result := domain.StageResult{Stage: StageBindings}
	output := o.generator.Output()

	err := scheduler.Run(ctx, o.sched, scheduler.Stage[string, bindingsResult]{
		Name:  StageBindings,
		Items: []string{output},
		Label: o.key,
		Work: func(ctx context.Context, _ string) (bindingsResult, error) {
			written, err := o.generator.Generate(ctx, o.index)
			if err != nil {
				return bindingsResult{err: message(err)}, nil
			}
			return bindingsResult{written: written}, nil
		},
		Failure: func(res bindingsResult) error {
			if res.err == "" {
				return nil
			}
			return softError(res.err)
		},
	}, func(path string, res bindingsResult) {
		result.Processed++
		if res.err != "" {
			result.Record(o.key(path), res.err)
			return
		}
		if res.written {
			o.logger.Info("Updated " + o.key(path))
		}
	})
	return result, err
}
