package ports

import "context"

// Synthesizer turns one dialogue line into encoded speech audio.
//
//go:generate go run go.uber.org/mock/mockgen -source=synthesizer.go -destination=mocks/mock_synthesizer.go -package=mocks
type Synthesizer interface {
	// Synthesize renders text spoken by voice and writes the encoded audio to dst.
	Synthesize(ctx context.Context, text, voice, dst string) error
}
