package pipeline

import (
	"context"
	"fmt"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/scheduler"
)

type animationResult struct {
	conversion domain.ConversionResult
	// skeleton is the parsed export, nil when the export failed.
	skeleton *domain.Skeleton
}

// ConvertAnimations exports every animation project below roots and indexes the exported
// skeletons. A root may name a single project file.
//
// The returned error is a *domain.ToolError when the exporter exited with a non-zero code.
// No further exports are started after it; exports already running finish.
func (o *Orchestrator) ConvertAnimations(ctx context.Context, roots []string) (domain.StageResult, error) {
	_, result, err := o.convertAnimations(ctx, roots)
	return result, err
}

// ExportAnimation exports one changed project and re-injects the lip-sync animations of its
// character, whose skeleton the export replaced.
func (o *Orchestrator) ExportAnimation(ctx context.Context, path string) ([]domain.StageResult, error) {
	assets, result, err := o.convertAnimations(ctx, []string{path})
	results := []domain.StageResult{result}
	if err != nil || len(assets) == 0 || !o.LipSyncAvailable() {
		return results, err
	}

	inject, err := o.InjectLipSync(ctx, assets[0])
	return append(results, inject), err
}

func (o *Orchestrator) convertAnimations(ctx context.Context, roots []string) ([]string, domain.StageResult, error) {
	result := domain.StageResult{Stage: StageAnimations}
	snapshot := o.checksums.Clone()

	var exported []string
	err := scheduler.Run(ctx, o.sched, scheduler.Stage[string, animationResult]{
		Name:  StageAnimations,
		Items: o.walk(roots, []string{domain.AnimationExt}),
		Label: o.key,
		Work: func(ctx context.Context, source string) (animationResult, error) {
			return o.exportAnimation(ctx, source, snapshot)
		},
		Failure: func(res animationResult) error { return conversionFailure(res.conversion) },
	}, func(_ string, res animationResult) {
		conv := res.conversion
		result.Processed++
		for _, msg := range conv.Errors {
			result.Record(conv.Source, msg)
		}
		o.checksums.Merge(conv.Delta)

		if res.skeleton == nil {
			return
		}
		exported = append(exported, conv.Asset)
		o.index.SpineObjects.Add(conv.Asset, conv.Source)
		o.index.AddSkeleton(res.skeleton, conv.Source)
		o.applyHooks(&result, res.skeleton, conv.Source)
	})
	return exported, result, err
}

// exportAnimation runs on a worker: it exports source and parses the resulting skeleton.
// Skipped exports are parsed too, so the index is rebuilt on every run.
func (o *Orchestrator) exportAnimation(ctx context.Context, source string, snapshot domain.Checksums) (animationResult, error) {
	conv, err := o.exporter.Export(ctx, source, snapshot)
	if err != nil {
		return animationResult{conversion: conv}, err
	}
	res := animationResult{conversion: conv}
	if conv.Failed() || conv.Asset == "" {
		return res, nil
	}

	data, err := o.files.ReadFile(o.cfg.CharacterPath(conv.Asset))
	if err == nil {
		res.skeleton, err = domain.ParseSkeleton(data)
	}
	if err != nil {
		res.conversion.Errors = append(res.conversion.Errors, message(err))
		// Without a readable skeleton the export has to run again next time.
		res.conversion.Delta = nil
	}
	return res, nil
}

// applyHooks interprets the bounding boxes of a skeleton. Script hooks get a stub script when
// none exists; dialogue hooks must name a known dialogue.
func (o *Orchestrator) applyHooks(result *domain.StageResult, skel *domain.Skeleton, source string) {
	seen := make(map[string]bool)
	for _, skin := range skel.Skins {
		for _, att := range skin.AttachmentsOfType(domain.AttachmentBoundingBox) {
			name := att.DisplayName()
			if seen[name] {
				continue
			}
			seen[name] = true

			kind, target := domain.ClassifyHook(name)
			switch kind {
			case domain.HookDialogue:
				if !o.index.Dialogues.Has(target) {
					result.Record(source, fmt.Sprintf("%s: dialogue %q referenced by %s",
						domain.ErrMissingDependency.Error(), target, source))
				}
			case domain.HookScript:
				if msg := o.ensureScript(target); msg != "" {
					result.Record(source, msg)
				}
			case domain.HookAnimation, domain.HookReserved:
			}
		}
	}
}

// ensureScript creates scripts/<name>.lua with a stub when it does not exist yet and copies it
// into the output tree.
func (o *Orchestrator) ensureScript(name string) string {
	path := o.cfg.ScriptPath(name)
	if o.files.Exists(path) {
		return ""
	}
	if err := o.files.WriteFile(path, []byte(domain.ScriptStub(name))); err != nil {
		return message(err)
	}
	o.logger.Info("Created " + domain.ChecksumKey(o.cfg.Source, path))
	if err := o.copyToOutput(domain.ScriptsDir, path); err != nil {
		return message(err)
	}
	return ""
}
