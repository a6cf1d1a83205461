package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		isTTY bool
		ci    string
		want  detector.OutputMode
	}{
		{name: "interactive terminal", isTTY: true, ci: "", want: detector.ModeTUI},
		{name: "CI=true", isTTY: true, ci: "true", want: detector.ModeLinear},
		{name: "CI=1", isTTY: true, ci: "1", want: detector.ModeLinear},
		{name: "CI=false", isTTY: true, ci: "false", want: detector.ModeTUI},
		{name: "piped output", isTTY: false, ci: "", want: detector.ModeLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		flag string
		want detector.OutputMode
	}{
		{flag: "", want: detector.ModeAuto},
		{flag: "auto", want: detector.ModeAuto},
		{flag: "tui", want: detector.ModeTUI},
		{flag: "linear", want: detector.ModeLinear},
		{flag: "ci", want: detector.ModeLinear},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := detector.ParseMode(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := detector.ParseMode("fancy")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidConfig.Error())
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, detector.ModeLinear, detector.ResolveMode(detector.ModeLinear, detector.ModeAuto))
	assert.Equal(t, detector.ModeTUI, detector.ResolveMode(detector.ModeLinear, detector.ModeTUI))
	assert.Equal(t, detector.ModeLinear, detector.ResolveMode(detector.ModeTUI, detector.ModeLinear))
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "tui", detector.ModeTUI.String())
	assert.Equal(t, "linear", detector.ModeLinear.String())
}
