// Package speak voices the lines of a dialogue file that have no recording yet.
package speak

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/text/language"
)

// StageSpeech names the speech stage in progress output.
const StageSpeech = "speech"

// VoiceProperty is the character property selecting a character's voice.
const VoiceProperty = "ai_voice"

// VoiceDir is the source directory receiving synthesized lines, below the audio directory.
const VoiceDir = "voice"

// Line is one dialogue line to synthesize.
type Line struct {
	// ID is the localization id of the line.
	ID    string
	Text  string
	Voice string
	// Path is the audio file the line is written to.
	Path string
}

// Speaker synthesizes missing dialogue audio.
type Speaker struct {
	cfg    *domain.Config
	files  ports.FileSystem
	synth  ports.Synthesizer
	sched  *scheduler.Scheduler
	logger ports.Logger
}

// New creates a Speaker.
func New(
	cfg *domain.Config,
	files ports.FileSystem,
	synth ports.Synthesizer,
	tracer ports.Tracer,
	logger ports.Logger,
) *Speaker {
	return &Speaker{
		cfg:    cfg,
		files:  files,
		synth:  synth,
		sched:  scheduler.New(tracer, cfg.Parallelism),
		logger: logger,
	}
}

// Lines lists the lines of df that have text but no audio file yet, ordered by id.
func (s *Speaker) Lines(df *domain.DialogueFile) ([]Line, error) {
	tag, err := language.Parse(s.cfg.Speech.Locale)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "locale", s.cfg.Speech.Locale)
	}
	base, _ := tag.Base()
	dir := filepath.Join(s.cfg.SourceDir(domain.AudioDir), VoiceDir)

	var lines []Line
	for _, id := range slices.Sorted(maps.Keys(df.Localization)) {
		text := strings.TrimSpace(strings.ReplaceAll(df.Text(id), "\n", " "))
		if text == "" {
			continue
		}
		path := filepath.Join(dir, domain.CueID(base.String(), id)+domain.AudioExt)
		if s.files.Exists(path) {
			continue
		}

		voice := s.cfg.Speech.Voice
		if v, ok := df.CharacterProperty(df.CharacterOf(id), VoiceProperty); ok && v != "" {
			voice = v
		}
		lines = append(lines, Line{ID: id, Text: text, Voice: voice, Path: path})
	}
	return lines, nil
}

// Speak synthesizes the missing lines of the dialogue file at path. A failed line is recorded
// and the remaining lines are still synthesized.
func (s *Speaker) Speak(ctx context.Context, path string) (domain.StageResult, error) {
	result := domain.StageResult{Stage: StageSpeech}

	data, err := s.files.ReadFile(path)
	if err != nil {
		return result, err
	}
	df, err := domain.ParseDialogueFile(data)
	if err != nil {
		return result, zerr.With(err, "path", path)
	}
	lines, err := s.Lines(df)
	if err != nil {
		return result, err
	}

	err = scheduler.Run(ctx, s.sched, scheduler.Stage[Line, error]{
		Name:  StageSpeech,
		Items: lines,
		Label: func(l Line) string { return domain.ChecksumKey(s.cfg.Root, l.Path) },
		Work: func(ctx context.Context, l Line) (error, error) { //nolint:revive // The first error is the line's soft failure
			return s.synth.Synthesize(ctx, l.Text, l.Voice, l.Path), nil
		},
		Failure: func(err error) error { return err },
	}, func(l Line, err error) {
		result.Processed++
		key := domain.ChecksumKey(s.cfg.Root, l.Path)
		if err != nil {
			result.Record(key, fmt.Sprintf("line %s: %s", l.ID, strings.TrimSpace(err.Error())))
			return
		}
		s.logger.Info("Spoke " + key + " with voice " + l.Voice)
	})
	return result, err
}
