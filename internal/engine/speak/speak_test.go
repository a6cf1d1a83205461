package speak_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/speak"
	"go.uber.org/mock/gomock"
)

const dialogue = `{
	"dialogs": [{"name": "greeting", "nodes": [
		{"id": 1, "character": "Joy"},
		{"id": 2, "character": "Fear"},
		{"id": 3, "character": "Joy"},
		{"id": 4}
	]}],
	"localization": {"1": ["Hallo\nWelt"], "2": ["Nein."], "3": [""], "4": ["Erzähler"]},
	"locales": ["de"],
	"characters": [
		{"canonicalName": "joy", "properties": {"ai_voice": "Puck"}},
		{"canonicalName": "Fear", "properties": {}}
	]
}`

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	root := t.TempDir()
	return &domain.Config{
		Root:        root,
		Source:      filepath.Join(root, "data-src"),
		Output:      filepath.Join(root, "data"),
		Parallelism: 1,
		Speech:      domain.SpeechConfig{Voice: "Kore", Locale: "de-DE"},
	}
}

func writeDialogue(t *testing.T, cfg *domain.Config) string {
	t.Helper()
	path := filepath.Join(cfg.SourceDir(domain.DialogDir), "intro.schnack")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(dialogue), domain.FilePerm))
	return path
}

func voicePath(cfg *domain.Config, name string) string {
	return filepath.Join(cfg.Source, "audio", "voice", name)
}

func newSpeaker(t *testing.T, cfg *domain.Config, synth *mocks.MockSynthesizer) *speak.Speaker {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return speak.New(cfg, fs.NewFiles(fs.NewWalker()), synth, telemetry.NewNoOpTracer(), logger)
}

func TestLines(t *testing.T) {
	cfg := testConfig(t)
	df, err := domain.ParseDialogueFile([]byte(dialogue))
	require.NoError(t, err)

	existing := voicePath(cfg, "de_002.ogg")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), domain.DirPerm))
	require.NoError(t, os.WriteFile(existing, []byte("ogg"), domain.FilePerm))

	lines, err := newSpeaker(t, cfg, nil).Lines(df)
	require.NoError(t, err)

	assert.Equal(t, []speak.Line{
		{ID: "1", Text: "Hallo Welt", Voice: "Puck", Path: voicePath(cfg, "de_001.ogg")},
		{ID: "4", Text: "Erzähler", Voice: "Kore", Path: voicePath(cfg, "de_004.ogg")},
	}, lines)
}

func TestLines_InvalidLocale(t *testing.T) {
	cfg := testConfig(t)
	cfg.Speech.Locale = "not a locale"

	_, err := newSpeaker(t, cfg, nil).Lines(&domain.DialogueFile{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidConfig.Error())
}

func TestSpeak_CollectsLineFailures(t *testing.T) {
	cfg := testConfig(t)
	path := writeDialogue(t, cfg)

	synth := mocks.NewMockSynthesizer(gomock.NewController(t))
	synth.EXPECT().Synthesize(gomock.Any(), "Hallo Welt", "Puck", voicePath(cfg, "de_001.ogg")).
		Return(errors.New(domain.ErrSpeechFailed.Error()))
	synth.EXPECT().Synthesize(gomock.Any(), "Nein.", "Kore", voicePath(cfg, "de_002.ogg")).Return(nil)
	synth.EXPECT().Synthesize(gomock.Any(), "Erzähler", "Kore", voicePath(cfg, "de_004.ogg")).Return(nil)

	res, err := newSpeaker(t, cfg, synth).Speak(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Processed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "data-src/audio/voice/de_001.ogg", res.Failures[0].File)
	assert.Equal(t, []string{"line 1: " + domain.ErrSpeechFailed.Error()}, res.Failures[0].Errors)
}

func TestSpeak_MalformedDialogue(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "broken.schnack")
	require.NoError(t, os.WriteFile(path, []byte("{"), domain.FilePerm))

	_, err := newSpeaker(t, cfg, nil).Speak(context.Background(), path)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrMalformedSource.Error())
}
