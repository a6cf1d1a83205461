// Package pipeline runs the build stages that turn the source tree into the output tree.
//
// The Orchestrator owns the checksum cache and the dependency index. Stages hand read-only
// snapshots to their workers and fold the results back sequentially, so neither is ever
// mutated concurrently.
package pipeline

import (
	"context"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/bindings"
	"go.trai.ch/kiln/internal/engine/convert"
	"go.trai.ch/kiln/internal/engine/scheduler"
)

// Stage names used in progress output and results.
const (
	StageStatic     = "static"
	StageAnimations = "animations"
	StageScenes     = "scenes"
	StageLipSync    = "lipsync"
	StageInject     = "inject"
	StageBindings   = "bindings"
)

// Orchestrator runs the pipeline stages against one project.
type Orchestrator struct {
	cfg    *domain.Config
	files  ports.FileSystem
	runner ports.ToolRunner
	logger ports.Logger
	sched  *scheduler.Scheduler

	exporter  *convert.AnimationExporter
	syncer    *convert.LipSyncer
	generator *bindings.Generator

	checksums domain.Checksums
	index     *domain.Index
	// dialogues holds the parsed dialogue files by source path.
	dialogues map[string]*domain.DialogueFile
}

// NewOrchestrator creates an Orchestrator with an empty cache and a fresh index.
func NewOrchestrator(
	cfg *domain.Config,
	files ports.FileSystem,
	hasher ports.Hasher,
	runner ports.ToolRunner,
	templates ports.TemplateSource,
	tracer ports.Tracer,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		files:     files,
		runner:    runner,
		logger:    logger,
		sched:     scheduler.New(tracer, cfg.Parallelism),
		exporter:  convert.NewAnimationExporter(cfg, runner, hasher, files),
		syncer:    convert.NewLipSyncer(cfg, runner, hasher, files),
		generator: bindings.NewGenerator(templates, files, cfg.Bindings.Output),
		checksums: domain.NewChecksums(),
		index:     domain.NewIndex(),
		dialogues: make(map[string]*domain.DialogueFile),
	}
}

// SetChecksums replaces the checksum cache, typically with the persisted one.
func (o *Orchestrator) SetChecksums(c domain.Checksums) {
	if c == nil {
		c = domain.NewChecksums()
	}
	o.checksums = c
}

// Checksums returns the current checksum cache.
func (o *Orchestrator) Checksums() domain.Checksums {
	return o.checksums
}

// Index returns the dependency index.
func (o *Orchestrator) Index() *domain.Index {
	return o.index
}

// LipSyncAvailable reports whether the lip-sync analyzer can be started.
func (o *Orchestrator) LipSyncAvailable() bool {
	_, err := o.runner.LookPath(o.cfg.Tools.LipSync)
	return err == nil
}

// Build runs every stage once over the whole source tree. Soft failures are collected in the
// returned results; the error is non-nil only for a fatal tool failure or cancellation.
func (o *Orchestrator) Build(ctx context.Context) ([]domain.StageResult, error) {
	return o.run(ctx, true)
}

// RefreshBindings rebuilds the index and the binding file without running lip-sync.
// Exports only run for projects that changed since the cached run.
func (o *Orchestrator) RefreshBindings(ctx context.Context) ([]domain.StageResult, error) {
	return o.run(ctx, false)
}

func (o *Orchestrator) run(ctx context.Context, lipSync bool) ([]domain.StageResult, error) {
	var results []domain.StageResult
	step := func(res domain.StageResult, err error) error {
		results = append(results, res)
		return err
	}

	if err := step(o.CopyStatic(ctx)); err != nil {
		return results, err
	}
	if err := step(o.ConvertAnimations(ctx, []string{o.cfg.Source})); err != nil {
		return results, err
	}
	res, rewritten, err := o.RehashScenes(ctx)
	for _, path := range rewritten {
		o.logger.Info("rehashed " + o.key(path))
	}
	if err := step(res, err); err != nil {
		return results, err
	}

	switch {
	case !lipSync:
	case o.LipSyncAvailable():
		if err := step(o.ConvertLipSync(ctx, "")); err != nil {
			return results, err
		}
		if err := step(o.InjectLipSync(ctx, "")); err != nil {
			return results, err
		}
	default:
		o.logger.Warn("lip-sync skipped: " + o.cfg.Tools.LipSync + " not found")
	}

	err = step(o.GenerateBindings(ctx))
	return results, err
}

// key normalizes path for cache keys, index sources and messages.
func (o *Orchestrator) key(path string) string {
	return domain.ChecksumKey(o.cfg.Root, path)
}

// walk collects the files below roots with one of exts, deduplicated and sorted.
// A root may also name a single file.
func (o *Orchestrator) walk(roots []string, exts []string) []string {
	var paths []string
	for _, root := range roots {
		for path := range o.files.Walk(root, exts) {
			paths = append(paths, filepath.Clean(path))
		}
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}

func conversionFailure(res domain.ConversionResult) error {
	if !res.Failed() {
		return nil
	}
	return softError(res.Errors[0])
}

// softError is a recorded failure shown in progress output.
type softError string

func (e softError) Error() string { return string(e) }
