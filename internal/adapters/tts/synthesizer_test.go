package tts_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/tts"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"google.golang.org/genai"
)

type fakeModels struct {
	audio  []byte
	err    error
	model  string
	voice  string
	locale string
	text   string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.text = contents[0].Parts[0].Text
	f.voice = config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName
	f.locale = config.SpeechConfig.LanguageCode
	if f.err != nil {
		return nil, f.err
	}

	var parts []*genai.Part
	if f.audio != nil {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: "audio/pcm", Data: f.audio}})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}, nil
}

func speechConfig() *domain.Config {
	cfg := &domain.Config{}
	cfg.Tools.Transcoder = "ffmpeg"
	cfg.Speech.Model = "tts-model"
	cfg.Speech.Locale = "de-DE"
	cfg.Speech.APIKeyEnv = "KILN_TEST_SPEECH_KEY"
	return cfg
}

// expectTranscode asserts the ffmpeg call and checks the staged PCM file while it exists.
func expectTranscode(runner *mocks.MockToolRunner, dst string, pcm []byte, result domain.ToolResult) *string {
	var staged string
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd domain.Command) (domain.ToolResult, error) {
			if cmd.Name != "ffmpeg" {
				return domain.ToolResult{}, fmt.Errorf("unexpected tool %q", cmd.Name)
			}
			staged = cmd.Args[7]
			data, err := os.ReadFile(staged)
			if err != nil {
				return domain.ToolResult{}, err
			}
			if string(data) != string(pcm) {
				return domain.ToolResult{}, errors.New("staged audio differs")
			}
			want := []string{"-f", "s16le", "-ar", "24000", "-ac", "1", "-i", staged, "-c:a", "libvorbis", dst, "-y"}
			if fmt.Sprint(cmd.Args) != fmt.Sprint(want) {
				return domain.ToolResult{}, fmt.Errorf("unexpected args %v", cmd.Args)
			}
			return result, nil
		})
	return &staged
}

func TestSynthesizer_Synthesize(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockToolRunner(ctrl)

	dst := filepath.Join(t.TempDir(), "audio", "voice", "de_007.ogg")
	pcm := []byte{1, 2, 3, 4}
	staged := expectTranscode(runner, dst, pcm, domain.ToolResult{})

	models := &fakeModels{audio: pcm}
	s := tts.NewWithGenerator(models, runner, speechConfig())

	require.NoError(t, s.Synthesize(context.Background(), "Hallo Welt", "Kore", dst))

	assert.Equal(t, "tts-model", models.model)
	assert.Equal(t, "Hallo Welt", models.text)
	assert.Equal(t, "Kore", models.voice)
	assert.Equal(t, "de-DE", models.locale)

	assert.Equal(t, filepath.Dir(dst), filepath.Dir(*staged))
	assert.NoFileExists(t, *staged, "staged PCM must be removed")
}

func TestSynthesizer_TranscoderFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockToolRunner(ctrl)

	dst := filepath.Join(t.TempDir(), "de_001.ogg")
	pcm := []byte{9}
	staged := expectTranscode(runner, dst, pcm, domain.ToolResult{ExitCode: 1, Output: []byte("codec missing\n")})

	s := tts.NewWithGenerator(&fakeModels{audio: pcm}, runner, speechConfig())
	err := s.Synthesize(context.Background(), "Hallo", "Kore", dst)

	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrSpeechFailed.Error())
	assert.NoFileExists(t, *staged)
}

func TestSynthesizer_ModelErrors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
	}{
		{name: "request fails", models: &fakeModels{err: errors.New("quota exceeded")}},
		{name: "no audio", models: &fakeModels{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runner := mocks.NewMockToolRunner(ctrl)

			dir := t.TempDir()
			s := tts.NewWithGenerator(tt.models, runner, speechConfig())
			err := s.Synthesize(context.Background(), "Hallo", "Kore", filepath.Join(dir, "x.ogg"))

			require.Error(t, err)
			assert.ErrorContains(t, err, domain.ErrSpeechFailed.Error())

			entries, readErr := os.ReadDir(dir)
			require.NoError(t, readErr)
			assert.Empty(t, entries)
		})
	}
}

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("KILN_TEST_SPEECH_KEY", "")

	_, err := tts.New(context.Background(), speechConfig(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrSpeechKeyMissing.Error())
}

func TestSynthesizer_AgainstHTTPBackend(t *testing.T) {
	t.Setenv("KILN_TEST_SPEECH_KEY", "test-key")

	pcm := []byte("pcm-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w,
			`{"candidates":[{"content":{"role":"model","parts":[{"inlineData":{"mimeType":"audio/pcm","data":%q}}]}}]}`,
			base64.StdEncoding.EncodeToString(pcm))
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	runner := mocks.NewMockToolRunner(ctrl)
	dst := filepath.Join(t.TempDir(), "de_002.ogg")
	expectTranscode(runner, dst, pcm, domain.ToolResult{})

	s, err := tts.NewWithBaseURL(context.Background(), speechConfig(), runner, srv.URL+"/")
	require.NoError(t, err)
	require.NoError(t, s.Synthesize(context.Background(), "Hallo", "Kore", dst))
}
