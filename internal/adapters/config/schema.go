package config

import "time"

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Source         string      `yaml:"source"`
	Output         string      `yaml:"output"`
	Cache          string      `yaml:"cache"`
	Parallelism    int         `yaml:"parallelism"`
	ReadOnly       bool        `yaml:"read_only"`
	ExportTemplate string      `yaml:"export_template"`
	Tools          ToolsDTO    `yaml:"tools"`
	Bindings       BindingsDTO `yaml:"bindings"`
	LipSync        LipSyncDTO  `yaml:"lipsync"`
	Watch          WatchDTO    `yaml:"watch"`
	Speech         SpeechDTO   `yaml:"speech"`
}

// ToolsDTO names the external tool executables.
type ToolsDTO struct {
	Animation  string `yaml:"animation"`
	LipSync    string `yaml:"lipsync"`
	Script     string `yaml:"script"`
	Transcoder string `yaml:"transcoder"`
}

// BindingsDTO configures the binding generator.
type BindingsDTO struct {
	Output       string `yaml:"output"`
	Reference    string `yaml:"reference"`
	ReferenceURL string `yaml:"reference_url"`
}

// LipSyncDTO configures lip-sync analysis.
type LipSyncDTO struct {
	Output           string            `yaml:"output"`
	CharacterAliases map[string]string `yaml:"character_aliases"`
}

// WatchDTO configures the watch loop.
type WatchDTO struct {
	Debounce       time.Duration `yaml:"debounce"`
	SuppressionTTL time.Duration `yaml:"suppression_ttl"`
}

// SpeechDTO configures text-to-speech generation.
type SpeechDTO struct {
	Model     string `yaml:"model"`
	Voice     string `yaml:"voice"`
	APIKeyEnv string `yaml:"api_key_env"`
	Locale    string `yaml:"locale"`
}
