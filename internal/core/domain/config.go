package domain

import (
	"path/filepath"
	"time"
)

// Config is the resolved project configuration. All paths are absolute.
type Config struct {
	// Root is the directory holding kiln.yaml, or the working directory without one.
	Root string
	// Source is the authored source tree.
	Source string
	// Output is the generated runtime tree.
	Output string
	// Cache is the kiln metadata directory.
	Cache string
	// Parallelism bounds the conversion worker pool.
	Parallelism int
	// ReadOnly marks generated files read-only outside of kiln's own writes.
	ReadOnly bool
	// ExportTemplate is the exporter settings file passed to every animation export.
	ExportTemplate string

	Tools    ToolsConfig
	Bindings BindingsConfig
	LipSync  LipSyncConfig
	Watch    WatchConfig
	Speech   SpeechConfig
}

// ToolsConfig names the external tool executables.
type ToolsConfig struct {
	Animation  string
	LipSync    string
	Script     string
	Transcoder string
}

// BindingsConfig locates the binding template and the generated binding file.
type BindingsConfig struct {
	Output       string
	Reference    string
	ReferenceURL string
}

// LipSyncConfig configures lip-sync analysis.
type LipSyncConfig struct {
	// Output is the directory receiving phoneme timing files.
	Output string
	// CharacterAliases maps dialogue character names to rig names.
	CharacterAliases map[string]string
}

// WatchConfig configures the watch loop.
type WatchConfig struct {
	Debounce       time.Duration
	SuppressionTTL time.Duration
}

// SpeechConfig configures text-to-speech generation.
type SpeechConfig struct {
	Model     string
	Voice     string
	APIKeyEnv string
	Locale    string
}

// SourceDir returns the source subdirectory name.
func (c *Config) SourceDir(name string) string {
	return filepath.Join(c.Source, name)
}

// OutputDir returns the output subdirectory name.
func (c *Config) OutputDir(name string) string {
	return filepath.Join(c.Output, name)
}

// ChecksumsPath returns the path of the checksum cache.
func (c *Config) ChecksumsPath() string {
	return filepath.Join(c.Cache, ChecksumsFileName)
}

// LockPath returns the path of the workspace lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Cache, LockFileName)
}

// AudioPath returns the output path of a cue's audio file.
func (c *Config) AudioPath(cueID string) string {
	return filepath.Join(c.Output, AudioDir, cueID+AudioExt)
}

// LipSyncPath returns the path of a cue's phoneme timing file.
func (c *Config) LipSyncPath(cueID string) string {
	return filepath.Join(c.LipSync.Output, cueID+JSONExt)
}

// CharacterPath returns the path of an exported character skeleton.
func (c *Config) CharacterPath(character string) string {
	return filepath.Join(c.Output, character, character+JSONExt)
}

// ScriptPath returns the source path of a script named name.
func (c *Config) ScriptPath(name string) string {
	return filepath.Join(c.Source, ScriptsDir, name+ScriptExt)
}
