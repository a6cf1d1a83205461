package convert

import (
	"context"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// LipSyncer runs the lip-sync analyzer on dialogue audio.
type LipSyncer struct {
	cfg    *domain.Config
	runner ports.ToolRunner
	hasher ports.Hasher
	files  ports.FileSystem
}

// NewLipSyncer creates a new LipSyncer.
func NewLipSyncer(
	cfg *domain.Config,
	runner ports.ToolRunner,
	hasher ports.Hasher,
	files ports.FileSystem,
) *LipSyncer {
	return &LipSyncer{cfg: cfg, runner: runner, hasher: hasher, files: files}
}

// Analyze produces the phoneme timing of one cue. Lip-sync is best effort: every failure,
// including a non-zero exit of the analyzer, is recorded in the result.
func (l *LipSyncer) Analyze(ctx context.Context, cue domain.Cue, cache domain.Checksums) domain.ConversionResult {
	audio := l.cfg.AudioPath(cue.ID)
	key := domain.ChecksumKey(l.cfg.Root, audio)
	result := domain.ConversionResult{Source: key, Asset: cue.ID}

	skip, hash, err := ShouldSkip(l.hasher, key, audio, cache)
	if err != nil {
		result.Errors = append(result.Errors, message(err))
		return result
	}
	if skip {
		result.Skipped = true
		result.Delta = domain.Checksums{key: hash}
		return result
	}

	out := l.cfg.LipSyncPath(cue.ID)
	if err := l.files.MkdirAll(filepath.Dir(out)); err != nil {
		result.Errors = append(result.Errors, message(err))
		return result
	}
	if err := l.files.MakeWritable(out); err != nil {
		result.Errors = append(result.Errors, message(err))
		return result
	}

	cmd := domain.Command{
		Name: l.cfg.Tools.LipSync,
		Args: []string{audio, "-r", "phonetic", "-f", "json", "-o", out},
		Dir:  l.cfg.Root,
	}

	res, err := l.runner.Run(context.WithoutCancel(ctx), cmd)
	switch {
	case err != nil:
		result.Errors = append(result.Errors, message(err))
	case !res.Succeeded():
		toolErr := &domain.ToolError{
			Tool:     filepath.Base(l.cfg.Tools.LipSync),
			Source:   key,
			ExitCode: res.ExitCode,
			Output:   string(res.Output),
		}
		result.Errors = append(result.Errors, message(toolErr))
	}

	if l.cfg.ReadOnly {
		if err := l.files.MakeReadOnly(out); err != nil {
			result.Errors = append(result.Errors, message(err))
		}
	}

	if !result.Failed() {
		result.Delta = domain.Checksums{key: hash}
	}
	return result
}
