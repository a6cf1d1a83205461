package bindings

import (
	"bytes"
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Generator writes the binding file from the index and the binding template.
type Generator struct {
	source ports.TemplateSource
	files  ports.FileSystem
	output string
}

// NewGenerator creates a Generator writing to output.
func NewGenerator(source ports.TemplateSource, files ports.FileSystem, output string) *Generator {
	return &Generator{source: source, files: files, output: output}
}

// Output returns the path of the generated binding file.
func (g *Generator) Output() string {
	return g.output
}

// Generate renders the binding file and writes it when its content changed.
// It reports whether the file was written.
func (g *Generator) Generate(ctx context.Context, idx *domain.Index) (bool, error) {
	tmpl, err := g.source.Fetch(ctx)
	if err != nil {
		return false, err
	}

	rendered := Render(idx, ParseTemplate(tmpl))

	if g.files.Exists(g.output) {
		current, err := g.files.ReadFile(g.output)
		if err == nil && bytes.Equal(current, rendered) {
			return false, nil
		}
	}

	if err := g.files.WriteFile(g.output, rendered); err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrBindingsWriteFailed.Error()), "path", g.output)
	}
	return true, nil
}
