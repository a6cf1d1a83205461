package convert

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// AnimationExporter exports animation projects into the output tree.
type AnimationExporter struct {
	cfg    *domain.Config
	runner ports.ToolRunner
	hasher ports.Hasher
	files  ports.FileSystem
}

// NewAnimationExporter creates a new AnimationExporter.
func NewAnimationExporter(
	cfg *domain.Config,
	runner ports.ToolRunner,
	hasher ports.Hasher,
	files ports.FileSystem,
) *AnimationExporter {
	return &AnimationExporter{cfg: cfg, runner: runner, hasher: hasher, files: files}
}

// AssetName returns the asset an animation project exports to: its file name without extension.
func AssetName(source string) string {
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}

// Export converts one animation project. An unchanged project is skipped without running the tool.
//
// The returned error is non-nil only when the exporter exits with a non-zero code; it is a
// *domain.ToolError and must abort the batch. Every other failure is recorded in the result.
func (e *AnimationExporter) Export(ctx context.Context, source string, cache domain.Checksums) (domain.ConversionResult, error) {
	key := domain.ChecksumKey(e.cfg.Root, source)
	name := AssetName(source)
	result := domain.ConversionResult{Source: key}

	skip, hash, err := ShouldSkip(e.hasher, key, source, cache)
	if err != nil {
		result.Errors = append(result.Errors, message(err))
		return result, nil
	}

	result.Asset = name
	if skip {
		result.Skipped = true
		result.Delta = domain.Checksums{key: hash}
		return result, nil
	}

	outDir := e.cfg.OutputDir(name)
	if err := e.files.RemoveAll(outDir); err != nil {
		result.Errors = append(result.Errors, message(err))
		return result, nil
	}

	cmd := domain.Command{
		Name: e.cfg.Tools.Animation,
		Args: []string{
			"-i", source,
			"-m",
			"-o", outDir + string(filepath.Separator),
			"-e", e.cfg.ExportTemplate,
		},
		Dir: e.cfg.Root,
	}

	// In-flight exports are not interrupted; a stopped batch only starts no new ones.
	res, err := e.runner.Run(context.WithoutCancel(ctx), cmd)
	if err != nil {
		result.Errors = append(result.Errors, message(err))
		return result, nil
	}
	if !res.Succeeded() {
		return result, &domain.ToolError{
			Tool:     filepath.Base(e.cfg.Tools.Animation),
			Source:   key,
			ExitCode: res.ExitCode,
			Output:   string(res.Output),
		}
	}

	exported := e.cfg.CharacterPath(name)
	if !e.files.Exists(exported) {
		err := zerr.With(domain.ErrMissingExport, "path", exported)
		result.Errors = append(result.Errors,
			message(err)+": "+domain.ChecksumKey(e.cfg.Root, exported)+
				" (the skeleton's root name must match the file name "+name+")")
		return result, nil
	}

	if err := e.copyZBufferMap(source, outDir); err != nil {
		result.Errors = append(result.Errors, message(err))
	}

	if e.cfg.ReadOnly {
		for _, path := range []string{exported, filepath.Join(outDir, name+domain.AtlasExt)} {
			if err := e.files.MakeReadOnly(path); err != nil {
				result.Errors = append(result.Errors, message(err))
			}
		}
	}

	if !result.Failed() {
		result.Delta = domain.Checksums{key: hash}
	}
	return result, nil
}

// copyZBufferMap copies the optional zBufferMap directory next to source into outDir.
func (e *AnimationExporter) copyZBufferMap(source, outDir string) error {
	src := filepath.Join(filepath.Dir(source), domain.ZBufferMapDir)
	if !e.files.Exists(src) {
		return nil
	}

	dst := filepath.Join(outDir, domain.ZBufferMapDir)
	for path := range e.files.Walk(src, nil) {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "path", path)
		}
		if err := e.files.CopyFile(path, filepath.Join(dst, rel)); err != nil {
			return err
		}
	}
	return nil
}
