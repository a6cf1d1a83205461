package tts

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"google.golang.org/genai"
)

// Generator exposes the model client seam for tests.
type Generator = generator

// NewWithGenerator builds a Synthesizer around a fake model client.
func NewWithGenerator(models Generator, runner ports.ToolRunner, cfg *domain.Config) *Synthesizer {
	return newWithGenerator(models, runner, cfg)
}

// NewWithBaseURL builds a Synthesizer whose client talks to baseURL.
func NewWithBaseURL(ctx context.Context, cfg *domain.Config, runner ports.ToolRunner, baseURL string) (*Synthesizer, error) {
	return newWithOptions(ctx, cfg, runner, genai.HTTPOptions{BaseURL: baseURL})
}
