package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/text/language"
)

// staticFile is one source file copied into the output tree.
type staticFile struct {
	// dir is the static directory the file belongs to.
	dir  string
	path string
}

type staticResult struct {
	errors   []string
	dialogue *domain.DialogueFile
}

// CopyStatic mirrors the static source directories into the output tree.
// Files are flattened by name into data/<dir>/. Scripts are syntax-checked, dialogue files
// and audio are indexed.
func (o *Orchestrator) CopyStatic(ctx context.Context) (domain.StageResult, error) {
	var items []staticFile
	for _, dir := range domain.StaticDirs() {
		for _, path := range o.walk([]string{o.cfg.SourceDir(dir)}, nil) {
			if domain.Classify(path, o.cfg.Bindings.Output) == domain.BindingsOutput {
				continue
			}
			items = append(items, staticFile{dir: dir, path: path})
		}
	}
	return o.copyStatic(ctx, items)
}

// CopyScript checks and copies one script.
func (o *Orchestrator) CopyScript(ctx context.Context, path string) (domain.StageResult, error) {
	return o.copyStatic(ctx, []staticFile{{dir: domain.ScriptsDir, path: path}})
}

// CopyConfig copies one config file.
func (o *Orchestrator) CopyConfig(ctx context.Context, path string) (domain.StageResult, error) {
	return o.copyStatic(ctx, []staticFile{{dir: domain.ConfigDir, path: path}})
}

// UpdateDialogue copies one dialogue file and indexes it again.
func (o *Orchestrator) UpdateDialogue(ctx context.Context, path string) (domain.StageResult, error) {
	return o.copyStatic(ctx, []staticFile{{dir: domain.DialogDir, path: path}})
}

func (o *Orchestrator) copyStatic(ctx context.Context, items []staticFile) (domain.StageResult, error) {
	result := domain.StageResult{Stage: StageStatic}

	err := scheduler.Run(ctx, o.sched, scheduler.Stage[staticFile, staticResult]{
		Name:  StageStatic,
		Items: items,
		Label: func(f staticFile) string { return o.key(f.path) },
		Work: func(ctx context.Context, f staticFile) (staticResult, error) {
			return o.copyStaticFile(ctx, f), nil
		},
		Failure: func(res staticResult) error {
			if len(res.errors) == 0 {
				return nil
			}
			return softError(res.errors[0])
		},
	}, func(f staticFile, res staticResult) {
		key := o.key(f.path)
		result.Processed++
		for _, msg := range res.errors {
			result.Record(key, msg)
		}

		switch {
		case res.dialogue != nil:
			o.dialogues[f.path] = res.dialogue
			o.index.AddDialogueFile(res.dialogue, key)
			for _, msg := range invalidLocales(res.dialogue) {
				result.Record(key, msg)
			}
		case f.dir == domain.AudioDir && strings.EqualFold(filepath.Ext(f.path), domain.AudioExt):
			o.index.Audio.Add(filepath.Base(f.path), key)
		}
	})
	return result, err
}

// copyStaticFile runs on a worker. It never touches the index.
func (o *Orchestrator) copyStaticFile(ctx context.Context, f staticFile) staticResult {
	var res staticResult

	if f.dir == domain.ScriptsDir && strings.EqualFold(filepath.Ext(f.path), domain.ScriptExt) {
		// A script that fails the check is still copied so the game reports the error in place.
		if msg := o.checkScript(ctx, f.path); msg != "" {
			res.errors = append(res.errors, msg)
		}
	}

	if f.dir == domain.DialogDir && strings.EqualFold(filepath.Ext(f.path), domain.DialogueExt) {
		data, err := o.files.ReadFile(f.path)
		if err == nil {
			res.dialogue, err = domain.ParseDialogueFile(data)
		}
		if err != nil {
			res.errors = append(res.errors, message(err))
		}
	}

	if err := o.copyToOutput(f.dir, f.path); err != nil {
		res.errors = append(res.errors, message(err))
	}
	return res
}

// copyToOutput copies path to data/<dir>/<base>, bracketing the write when outputs are read-only.
func (o *Orchestrator) copyToOutput(dir, path string) error {
	dst := filepath.Join(o.cfg.OutputDir(dir), filepath.Base(path))
	if err := o.files.CopyFile(path, dst); err != nil {
		return err
	}
	if o.cfg.ReadOnly {
		return o.files.MakeReadOnly(dst)
	}
	return nil
}

// checkScript runs the script compiler in parse-only mode and returns its complaint, if any.
func (o *Orchestrator) checkScript(ctx context.Context, path string) string {
	if o.cfg.Tools.Script == "" {
		return ""
	}
	res, err := o.runner.Run(context.WithoutCancel(ctx), domain.Command{
		Name: o.cfg.Tools.Script,
		Args: []string{"-p", path},
		Dir:  o.cfg.Root,
	})
	if err != nil {
		return message(err)
	}
	if res.Succeeded() {
		return ""
	}
	toolErr := &domain.ToolError{
		Tool:     filepath.Base(o.cfg.Tools.Script),
		Source:   o.key(path),
		ExitCode: res.ExitCode,
		Output:   string(res.Output),
	}
	return zerr.Wrap(toolErr, domain.ErrToolFailed.Error()).Error()
}

// invalidLocales lists a diagnostic for every locale code that is not a valid language tag.
func invalidLocales(df *domain.DialogueFile) []string {
	var msgs []string
	for _, locale := range df.Locales {
		if _, err := language.Parse(locale); err != nil {
			msgs = append(msgs, fmt.Sprintf("%s: locale %q: %v", domain.ErrMalformedSource.Error(), locale, err))
		}
	}
	return msgs
}

// message renders err as one line of a file's error list.
func message(err error) string {
	return strings.TrimSpace(err.Error())
}
