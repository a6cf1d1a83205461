// Package watchloop keeps the output tree in sync with the source tree while files change.
//
// Events are debounced per path and dispatched one at a time on the loop goroutine, so the
// pipeline state is never touched concurrently.
package watchloop

import (
	"context"
	"errors"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Pipeline is the set of incremental pipeline operations the loop dispatches to.
type Pipeline interface {
	ExportAnimation(ctx context.Context, path string) ([]domain.StageResult, error)
	UpdateAudio(ctx context.Context, path string) ([]domain.StageResult, error)
	CopyScript(ctx context.Context, path string) (domain.StageResult, error)
	NormalizeScene(ctx context.Context, path string) (domain.StageResult, bool, error)
	AcceptScene(ctx context.Context, path string) (domain.StageResult, error)
	CopyConfig(ctx context.Context, path string) (domain.StageResult, error)
	UpdateDialogue(ctx context.Context, path string) (domain.StageResult, error)
	GenerateBindings(ctx context.Context) (domain.StageResult, error)
}

// Loop watches the source tree and dispatches every changed file to the pipeline.
type Loop struct {
	cfg          *domain.Config
	pipeline     Pipeline
	watcher      ports.Watcher
	newDebouncer ports.DebouncerFactory
	suppressed   ports.SuppressionSet
	logger       ports.Logger
}

// New creates a Loop.
func New(
	cfg *domain.Config,
	pipeline Pipeline,
	watcher ports.Watcher,
	newDebouncer ports.DebouncerFactory,
	suppressed ports.SuppressionSet,
	logger ports.Logger,
) *Loop {
	return &Loop{
		cfg:          cfg,
		pipeline:     pipeline,
		watcher:      watcher,
		newDebouncer: newDebouncer,
		suppressed:   suppressed,
		logger:       logger,
	}
}

// Run watches until ctx is done or a dispatch fails fatally. A dispatch in progress when ctx
// is cancelled completes before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.watcher.Start(ctx, l.cfg.Source); err != nil {
		return zerr.Wrap(err, domain.ErrWatcherFailed.Error())
	}
	defer func() {
		if err := l.watcher.Stop(); err != nil {
			l.logger.Error(err)
		}
	}()

	batches := make(chan []string)
	done := make(chan struct{})
	defer close(done)

	debouncer := l.newDebouncer(l.cfg.Watch.Debounce, func(paths []string) {
		select {
		case batches <- paths:
		case <-done:
		}
	})

	go func() {
		for event := range l.watcher.Events() {
			l.observe(event, debouncer)
		}
	}()

	l.logger.Info("Watching " + domain.ChecksumKey(l.cfg.Root, l.cfg.Source) + " for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			for _, path := range paths {
				if err := l.Dispatch(ctx, path); err != nil {
					if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
						return nil
					}
					return err
				}
			}
		}
	}
}

// observe logs structural events and queues changed files for dispatch.
func (l *Loop) observe(event ports.WatchEvent, debouncer ports.Debouncer) {
	if !domain.IsTracked(event.Path) {
		return
	}
	key := domain.ChecksumKey(l.cfg.Root, event.Path)

	switch event.Operation {
	case ports.OpRemove:
		l.logger.Warn(key + " was deleted, please delete it manually from " +
			domain.ChecksumKey(l.cfg.Root, l.cfg.Output))
	case ports.OpRename:
		l.logger.Info(key + " was moved")
	case ports.OpCreate:
		l.logger.Info(key + " was created")
		debouncer.Add(event.Path)
	case ports.OpWrite:
		debouncer.Add(event.Path)
	}
}

// Dispatch brings the output tree up to date with one changed source file. Soft failures are
// logged; the returned error is fatal.
func (l *Loop) Dispatch(ctx context.Context, path string) error {
	kind := domain.Classify(path, l.cfg.Bindings.Output)

	var (
		results []domain.StageResult
		err     error
	)
	single := func(res domain.StageResult, e error) {
		results, err = append(results, res), e
	}

	switch kind {
	case domain.AnimationSource:
		results, err = l.pipeline.ExportAnimation(ctx, path)
	case domain.AudioSource:
		results, err = l.pipeline.UpdateAudio(ctx, path)
	case domain.ScriptSource:
		single(l.pipeline.CopyScript(ctx, path))
	case domain.SceneSource:
		single(l.dispatchScene(ctx, path))
	case domain.ConfigSource:
		single(l.pipeline.CopyConfig(ctx, path))
	case domain.DialogueSource:
		single(l.pipeline.UpdateDialogue(ctx, path))
	case domain.BindingsOutput, domain.Unrecognized:
		return nil
	}
	l.report(results)
	if err != nil {
		return err
	}

	res, err := l.pipeline.GenerateBindings(ctx)
	l.report([]domain.StageResult{res})
	return err
}

// dispatchScene tells the echo of kiln's own rewrite apart from an author's edit.
func (l *Loop) dispatchScene(ctx context.Context, path string) (domain.StageResult, error) {
	if l.suppressed.Consume(path) {
		return l.pipeline.AcceptScene(ctx, path)
	}

	res, rewritten, err := l.pipeline.NormalizeScene(ctx, path)
	if rewritten {
		l.suppressed.Add(path)
	}
	return res, err
}

func (l *Loop) report(results []domain.StageResult) {
	for _, res := range results {
		for _, f := range res.Failures {
			for _, msg := range f.Errors {
				l.logger.Warn(f.File + ": " + msg)
			}
		}
	}
}
