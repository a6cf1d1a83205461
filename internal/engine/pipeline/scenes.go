package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/scheduler"
)

type sceneResult struct {
	scene     *domain.Scene
	rewritten bool
	err       string
}

// SceneName returns the scene a scene file defines: its file name without extension.
func SceneName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// RehashScenes refreshes the self-hash of every scene file, writes back the stale ones,
// indexes all scenes and copies them into the output tree. It returns the rewritten paths.
// A malformed scene is recorded and does not affect the others.
func (o *Orchestrator) RehashScenes(ctx context.Context) (domain.StageResult, []string, error) {
	result := domain.StageResult{Stage: StageScenes}

	var rewritten []string
	err := scheduler.Run(ctx, o.sched, scheduler.Stage[string, sceneResult]{
		Name:  StageScenes,
		Items: o.walk([]string{o.cfg.SourceDir(domain.ScenesDir)}, []string{domain.JSONExt}),
		Label: o.key,
		Work: func(_ context.Context, path string) (sceneResult, error) {
			res := o.rehashScene(path)
			if res.err == "" {
				if err := o.copyToOutput(domain.ScenesDir, path); err != nil {
					res.err = message(err)
				}
			}
			return res, nil
		},
		Failure: sceneFailure,
	}, func(path string, res sceneResult) {
		result.Processed++
		o.foldScene(&result, path, res)
		if res.rewritten {
			rewritten = append(rewritten, path)
		}
	})
	return result, rewritten, err
}

// NormalizeScene handles an edited scene. A stale scene is rewritten in place and reported so
// the caller can expect the echo of that write; an up to date scene is copied and indexed.
func (o *Orchestrator) NormalizeScene(ctx context.Context, path string) (domain.StageResult, bool, error) {
	result := domain.StageResult{Stage: StageScenes}

	var rewritten bool
	err := scheduler.Run(ctx, o.sched, scheduler.Stage[string, sceneResult]{
		Name:  StageScenes,
		Items: []string{path},
		Label: o.key,
		Work: func(_ context.Context, path string) (sceneResult, error) {
			return o.rehashScene(path), nil
		},
		Failure: sceneFailure,
	}, func(path string, res sceneResult) {
		result.Processed++
		rewritten = res.rewritten
		if res.rewritten {
			return
		}
		o.foldScene(&result, path, res)
		if res.err == "" {
			o.acceptScene(&result, path)
		}
	})
	return result, rewritten, err
}

// AcceptScene handles the echo of a scene kiln rewrote itself: the scene is copied and
// indexed without being hashed again, and its script is created when missing.
func (o *Orchestrator) AcceptScene(ctx context.Context, path string) (domain.StageResult, error) {
	result := domain.StageResult{Stage: StageScenes}

	err := scheduler.Run(ctx, o.sched, scheduler.Stage[string, sceneResult]{
		Name:  StageScenes,
		Items: []string{path},
		Label: o.key,
		Work: func(_ context.Context, path string) (sceneResult, error) {
			scene, err := o.readScene(path)
			if err != nil {
				return sceneResult{err: message(err)}, nil
			}
			return sceneResult{scene: scene}, nil
		},
		Failure: sceneFailure,
	}, func(path string, res sceneResult) {
		result.Processed++
		o.foldScene(&result, path, res)
		o.acceptScene(&result, path)
	})
	return result, err
}

func (o *Orchestrator) acceptScene(result *domain.StageResult, path string) {
	if err := o.copyToOutput(domain.ScenesDir, path); err != nil {
		result.Record(o.key(path), message(err))
	}
	if msg := o.ensureScript(SceneName(path)); msg != "" {
		result.Record(o.key(path), msg)
	}
}

// foldScene indexes a scene. A scene that failed to parse is still known by name.
func (o *Orchestrator) foldScene(result *domain.StageResult, path string, res sceneResult) {
	key := o.key(path)
	if res.err != "" {
		result.Record(key, res.err)
	}
	o.index.AddScene(SceneName(path), res.scene, key)
}

func (o *Orchestrator) readScene(path string) (*domain.Scene, error) {
	data, err := o.files.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return domain.ParseScene(data)
}

// rehashScene runs on a worker and rewrites path when its stored hash is stale.
func (o *Orchestrator) rehashScene(path string) sceneResult {
	scene, err := o.readScene(path)
	if err != nil {
		return sceneResult{err: message(err)}
	}

	changed, err := scene.Rehash()
	if err != nil {
		return sceneResult{err: message(err)}
	}
	res := sceneResult{scene: scene}
	if !changed {
		return res
	}

	data, err := scene.Marshal()
	if err == nil {
		err = o.files.WriteFile(path, data)
	}
	if err != nil {
		res.err = message(err)
		return res
	}
	res.rewritten = true
	return res
}

func sceneFailure(res sceneResult) error {
	if res.err == "" {
		return nil
	}
	return softError(res.err)
}
