package pipeline

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/scheduler"
)

// ConvertLipSync analyzes the audio of every cue of character, or of every character when it
// is empty. Cues without audio are skipped with a warning.
func (o *Orchestrator) ConvertLipSync(ctx context.Context, character string) (domain.StageResult, error) {
	return o.convertLipSync(ctx, o.cues(character, nil))
}

// UpdateAudio copies one changed audio file, analyzes its cue and re-injects the lip-sync
// animations of the cue's character.
func (o *Orchestrator) UpdateAudio(ctx context.Context, path string) ([]domain.StageResult, error) {
	copied, err := o.copyStatic(ctx, []staticFile{{dir: domain.AudioDir, path: path}})
	results := []domain.StageResult{copied}
	if err != nil || copied.Failed() {
		return results, err
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cues := o.cues("", func(c domain.Cue) bool { return c.ID == id })
	if len(cues) == 0 {
		return results, nil
	}
	if !o.LipSyncAvailable() {
		o.logger.Warn("lip-sync skipped: " + o.cfg.Tools.LipSync + " not found")
		return results, nil
	}

	analyzed, err := o.convertLipSync(ctx, cues)
	results = append(results, analyzed)
	if err != nil {
		return results, err
	}

	injected, err := o.InjectLipSync(ctx, cues[0].Character)
	return append(results, injected), err
}

// cues enumerates the cues of the indexed dialogue files whose audio exists, deduplicated by
// id. keep filters further when set.
func (o *Orchestrator) cues(character string, keep func(domain.Cue) bool) []domain.Cue {
	seen := make(map[string]bool)
	var cues []domain.Cue
	for _, path := range slices.Sorted(maps.Keys(o.dialogues)) {
		for _, cue := range o.dialogues[path].Cues(o.cfg.LipSync.CharacterAliases, character) {
			if seen[cue.ID] || (keep != nil && !keep(cue)) {
				continue
			}
			seen[cue.ID] = true

			audio := o.cfg.AudioPath(cue.ID)
			if !o.files.Exists(audio) {
				o.logger.Warn("Can not load " + o.key(audio) + ", skipping " + cue.ID)
				continue
			}
			cues = append(cues, cue)
		}
	}
	return cues
}

func (o *Orchestrator) convertLipSync(ctx context.Context, cues []domain.Cue) (domain.StageResult, error) {
	result := domain.StageResult{Stage: StageLipSync}
	snapshot := o.checksums.Clone()

	err := scheduler.Run(ctx, o.sched, scheduler.Stage[domain.Cue, domain.ConversionResult]{
		Name:  StageLipSync,
		Items: cues,
		Label: func(c domain.Cue) string { return c.ID },
		Work: func(ctx context.Context, cue domain.Cue) (domain.ConversionResult, error) {
			return o.syncer.Analyze(ctx, cue, snapshot), nil
		},
		Failure: conversionFailure,
	}, func(_ domain.Cue, res domain.ConversionResult) {
		result.Processed++
		for _, msg := range res.Errors {
			result.Record(res.Source, msg)
		}
		o.checksums.Merge(res.Delta)
	})
	return result, err
}

type injectJob struct {
	character string
	cues      []domain.Cue
}

type injectResult struct {
	missing bool
	errors  []string
}

// InjectLipSync adds a say_<cue> animation per analyzed cue to the exported skeleton of
// character, or of every character when it is empty. A character without an exported
// skeleton is skipped with a warning.
func (o *Orchestrator) InjectLipSync(ctx context.Context, character string) (domain.StageResult, error) {
	result := domain.StageResult{Stage: StageInject}

	byCharacter := make(map[string][]domain.Cue)
	for _, cue := range o.cues(character, func(c domain.Cue) bool {
		return o.files.Exists(o.cfg.LipSyncPath(c.ID))
	}) {
		byCharacter[cue.Character] = append(byCharacter[cue.Character], cue)
	}

	jobs := make([]injectJob, 0, len(byCharacter))
	for _, name := range slices.Sorted(maps.Keys(byCharacter)) {
		jobs = append(jobs, injectJob{character: name, cues: byCharacter[name]})
	}

	err := scheduler.Run(ctx, o.sched, scheduler.Stage[injectJob, injectResult]{
		Name:  StageInject,
		Items: jobs,
		Label: func(j injectJob) string { return j.character },
		Work: func(_ context.Context, job injectJob) (injectResult, error) {
			return o.inject(job), nil
		},
		Failure: func(res injectResult) error {
			if len(res.errors) == 0 {
				return nil
			}
			return softError(res.errors[0])
		},
	}, func(job injectJob, res injectResult) {
		result.Processed++
		key := o.key(o.cfg.CharacterPath(job.character))
		if res.missing {
			o.logger.Warn(key + " not found, lip-sync for " + job.character + " not applied")
			return
		}
		for _, msg := range res.errors {
			result.Record(key, msg)
		}
	})
	return result, err
}

// inject runs on a worker. Each character file is owned by exactly one job.
func (o *Orchestrator) inject(job injectJob) injectResult {
	path := o.cfg.CharacterPath(job.character)
	if !o.files.Exists(path) {
		return injectResult{missing: true}
	}

	var res injectResult
	err := o.files.Rewrite(path, func(current []byte) ([]byte, error) {
		character, err := domain.ParseCharacter(current)
		if err != nil {
			return nil, err
		}
		for _, cue := range job.cues {
			data, err := o.files.ReadFile(o.cfg.LipSyncPath(cue.ID))
			if err != nil {
				res.errors = append(res.errors, message(err))
				continue
			}
			mouth, err := domain.ParseMouthCues(data)
			if err != nil {
				res.errors = append(res.errors, cue.ID+": "+message(err))
				continue
			}
			character.SetSayAnimation(cue.ID, mouth)
		}
		return character.Marshal()
	})
	if err != nil {
		res.errors = append(res.errors, message(err))
		return res
	}

	if o.cfg.ReadOnly {
		if err := o.files.MakeReadOnly(path); err != nil {
			res.errors = append(res.errors, message(err))
		}
	}
	return res
}
