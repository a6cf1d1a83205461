package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// SourceKind is the closed set of roles a changed source file can play.
type SourceKind uint8

const (
	// Unrecognized files are ignored by the watch loop.
	Unrecognized SourceKind = iota
	// AnimationSource is an animation project.
	AnimationSource
	// AudioSource is a dialogue audio cue.
	AudioSource
	// ScriptSource is a Lua script.
	ScriptSource
	// SceneSource is a scene definition below a scenes directory.
	SceneSource
	// ConfigSource is a JSON file below a config directory.
	ConfigSource
	// DialogueSource is a dialogue tree below a dialog directory.
	DialogueSource
	// BindingsOutput is the generated binding file itself.
	BindingsOutput
)

var sourceKindNames = [...]string{
	Unrecognized:    "unrecognized",
	AnimationSource: "animation",
	AudioSource:     "audio",
	ScriptSource:    "script",
	SceneSource:     "scene",
	ConfigSource:    "config",
	DialogueSource:  "dialogue",
	BindingsOutput:  "bindings",
}

// String returns the lower-case name of the kind.
func (k SourceKind) String() string {
	if int(k) < len(sourceKindNames) {
		return sourceKindNames[k]
	}
	return sourceKindNames[Unrecognized]
}

// Classify maps a source path to its kind by extension and path segments.
// bindingsOutput is the path of the generated binding file; it is compared after cleaning.
func Classify(path, bindingsOutput string) SourceKind {
	if bindingsOutput != "" && filepath.Clean(path) == filepath.Clean(bindingsOutput) {
		return BindingsOutput
	}

	segments := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	under := func(dir string) bool {
		return slices.Contains(segments, dir)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case AnimationExt:
		return AnimationSource
	case AudioExt:
		return AudioSource
	case ScriptExt:
		return ScriptSource
	case JSONExt:
		switch {
		case under(ScenesDir):
			return SceneSource
		case under(ConfigDir):
			return ConfigSource
		}
	case DialogueExt:
		if under(DialogDir) {
			return DialogueSource
		}
	}
	return Unrecognized
}

// IsTracked reports whether path has one of the watched extensions.
func IsTracked(path string) bool {
	return slices.Contains(TrackedExtensions(), strings.ToLower(filepath.Ext(path)))
}
