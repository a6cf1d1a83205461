package config

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// Default values shared by every platform.
const (
	DefaultSource         = "data-src"
	DefaultOutput         = "data"
	DefaultExportTemplate = "data-src/spine_export_template.export.json"
	DefaultBindingsOutput = "data-src/scripts/ALPACA.lua"
	DefaultReference      = "subprojects/ALPACA/src/lua.cpp"
	DefaultReferenceURL   = "https://raw.githubusercontent.com/pinguin999/ALPACA/main/src/lua.cpp"
	DefaultLipSyncOutput  = "data/rhubarb"
	DefaultDebounce       = 500 * time.Millisecond
	DefaultSuppressionTTL = 5 * time.Second
	DefaultSpeechModel    = "gemini-2.5-flash-preview-tts"
	DefaultSpeechVoice    = "Algenib"
	DefaultSpeechKeyEnv   = "GEMINI_API_KEY"
	DefaultSpeechLocale   = "de-DE"
)

// Defaults returns the configuration used when kiln.yaml omits a key, for the given GOOS.
func Defaults(goos string) Kilnfile {
	k := Kilnfile{
		Source:         DefaultSource,
		Output:         DefaultOutput,
		Cache:          domain.DefaultKilnPath(),
		ReadOnly:       true,
		ExportTemplate: DefaultExportTemplate,
		Tools: ToolsDTO{
			Animation:  "/usr/bin/spine",
			LipSync:    "/usr/bin/rhubarb",
			Script:     "luac",
			Transcoder: "ffmpeg",
		},
		Bindings: BindingsDTO{
			Output:       DefaultBindingsOutput,
			Reference:    DefaultReference,
			ReferenceURL: DefaultReferenceURL,
		},
		LipSync: LipSyncDTO{
			Output:           DefaultLipSyncOutput,
			CharacterAliases: map[string]string{},
		},
		Watch: WatchDTO{
			Debounce:       DefaultDebounce,
			SuppressionTTL: DefaultSuppressionTTL,
		},
		Speech: SpeechDTO{
			Model:     DefaultSpeechModel,
			Voice:     DefaultSpeechVoice,
			APIKeyEnv: DefaultSpeechKeyEnv,
			Locale:    DefaultSpeechLocale,
		},
	}

	switch goos {
	case "darwin":
		k.Tools.Animation = "/Applications/Spine.app/Contents/MacOS/Spine"
		k.Tools.LipSync = "/Applications/Rhubarb-Lip-Sync-1.14.0-macOS/rhubarb"
	case "windows":
		k.Tools.Animation = "Spine.exe"
		k.Tools.LipSync = "rhubarb.exe"
		k.Tools.Script = "luac.exe"
		k.Tools.Transcoder = "ffmpeg.exe"
		// Read-only outputs break the engine's hot reload on Windows.
		k.ReadOnly = false
	}
	return k
}
