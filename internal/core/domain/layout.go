package domain

import "path/filepath"

const (
	// KilnDirName is the name of the internal workspace directory.
	KilnDirName = ".kiln"

	// ChecksumsFileName is the name of the persisted checksum cache.
	ChecksumsFileName = "checksums.json"

	// LockFileName is the name of the workspace lock file.
	LockFileName = "kiln.lock"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "kiln.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ReadOnlyFilePerm is the permission of generated files outside of a write (r--r--r--).
	ReadOnlyFilePerm = 0o444

	// WritableFilePerm is the permission of generated files while kiln writes them (rw-r--r--).
	WritableFilePerm = 0o644
)

// Source tree directories. Each one is mirrored into the output tree under the same name.
const (
	ScriptsDir = "scripts"
	ConfigDir  = "config"
	FontsDir   = "fonts"
	ScenesDir  = "scenes"
	AudioDir   = "audio"
	IconsDir   = "icons"
	DialogDir  = "dialog"
)

// File extensions tracked by the pipeline and the watcher.
const (
	AnimationExt = ".spine"
	ScriptExt    = ".lua"
	JSONExt      = ".json"
	DialogueExt  = ".schnack"
	AudioExt     = ".ogg"
	AtlasExt     = ".atlas"
)

// ZBufferMapDir is the optional directory next to an animation project that is copied with its export.
const ZBufferMapDir = "zBufferMap"

// StaticDirs lists the source directories copied verbatim by the copy stage, in copy order.
func StaticDirs() []string {
	return []string{ScriptsDir, ConfigDir, FontsDir, AudioDir, IconsDir, DialogDir}
}

// TrackedExtensions lists the extensions the watcher reacts to.
func TrackedExtensions() []string {
	return []string{AnimationExt, ScriptExt, JSONExt, DialogueExt, AudioExt}
}

// DefaultKilnPath returns the default root directory for kiln metadata.
func DefaultKilnPath() string {
	return KilnDirName
}

// DefaultChecksumsPath returns the default path of the checksum cache.
// It joins .kiln and checksums.json.
func DefaultChecksumsPath() string {
	return filepath.Join(KilnDirName, ChecksumsFileName)
}

// DefaultLockPath returns the default path of the workspace lock.
// It joins .kiln and kiln.lock.
func DefaultLockPath() string {
	return filepath.Join(KilnDirName, LockFileName)
}
