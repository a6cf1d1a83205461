// Package tts synthesizes dialogue lines with the Gemini speech models and transcodes the
// result to the game's audio format.
package tts

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/genai"
)

// PCM format of the speech models' inline audio.
const (
	sampleRate = 24000
	channels   = 1
)

var _ ports.Synthesizer = (*Synthesizer)(nil)

// generator is the part of genai.Models the synthesizer calls.
type generator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Synthesizer implements ports.Synthesizer.
type Synthesizer struct {
	models     generator
	runner     ports.ToolRunner
	model      string
	locale     string
	transcoder string
}

// New creates a Synthesizer for cfg. The API key is read from the environment variable
// named by cfg.Speech.APIKeyEnv.
func New(ctx context.Context, cfg *domain.Config, runner ports.ToolRunner) (*Synthesizer, error) {
	return newWithOptions(ctx, cfg, runner, genai.HTTPOptions{})
}

func newWithOptions(
	ctx context.Context,
	cfg *domain.Config,
	runner ports.ToolRunner,
	httpOptions genai.HTTPOptions,
) (*Synthesizer, error) {
	apiKey := os.Getenv(cfg.Speech.APIKeyEnv)
	if apiKey == "" {
		return nil, zerr.With(domain.ErrSpeechKeyMissing, "env", cfg.Speech.APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrSpeechFailed.Error())
	}

	return newWithGenerator(client.Models, runner, cfg), nil
}

func newWithGenerator(models generator, runner ports.ToolRunner, cfg *domain.Config) *Synthesizer {
	return &Synthesizer{
		models:     models,
		runner:     runner,
		model:      cfg.Speech.Model,
		locale:     cfg.Speech.Locale,
		transcoder: cfg.Tools.Transcoder,
	}
}

// Synthesize renders text with voice and writes an Ogg Vorbis file to dst.
// The raw PCM is staged next to dst and removed afterwards.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice, dst string) error {
	pcm, err := s.generate(ctx, text, voice)
	if err != nil {
		return zerr.With(err, "voice", voice)
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrIOFailure.Error())
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".kiln-tts-*.pcm")
	if err != nil {
		return zerr.Wrap(err, domain.ErrIOFailure.Error())
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(pcm); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrIOFailure.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrIOFailure.Error())
	}

	return s.transcode(ctx, tmp.Name(), dst)
}

func (s *Synthesizer) generate(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: s.locale,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrSpeechFailed.Error())
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, zerr.Wrap(zerr.New("response carried no audio"), domain.ErrSpeechFailed.Error())
}

func (s *Synthesizer) transcode(ctx context.Context, src, dst string) error {
	cmd := domain.Command{
		Name: s.transcoder,
		Args: []string{
			"-f", "s16le",
			"-ar", strconv.Itoa(sampleRate),
			"-ac", strconv.Itoa(channels),
			"-i", src,
			"-c:a", "libvorbis",
			dst,
			"-y",
		},
	}

	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.Succeeded() {
		failed := zerr.With(domain.ErrSpeechFailed, "exit_code", res.ExitCode)
		return zerr.With(failed, "output", strings.TrimSpace(string(res.Output)))
	}
	return nil
}
