package domain

import "go.trai.ch/zerr"

var (
	// ErrFatalToolFailure is returned when the animation exporter exits with a non-zero code.
	// It aborts the running batch and the process.
	ErrFatalToolFailure = zerr.New("animation export failed")

	// ErrToolFailed is recorded when a best-effort tool (lip-sync, script check) exits with a non-zero code.
	ErrToolFailed = zerr.New("tool exited with a non-zero code")

	// ErrToolNotStarted is recorded when an external tool cannot be started.
	ErrToolNotStarted = zerr.New("failed to start external tool")

	// ErrToolNotFound is returned when an external tool binary cannot be located.
	ErrToolNotFound = zerr.New("external tool not found")

	// ErrMissingDependency is recorded when a referenced dialogue, audio file or script does not exist.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrMissingExport is recorded when the exporter succeeded but the expected skeleton file is absent.
	ErrMissingExport = zerr.New("exported skeleton not found")

	// ErrMalformedSource is recorded when a scene, dialogue or skeleton file cannot be parsed.
	ErrMalformedSource = zerr.New("malformed source file")

	// ErrIOFailure is recorded when a file cannot be read, written or copied.
	ErrIOFailure = zerr.New("i/o failure")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrCopyFailed is returned when copying a file into the output tree fails.
	ErrCopyFailed = zerr.New("failed to copy file")

	// ErrPermissionChangeFailed is returned when toggling a generated file's mode fails.
	ErrPermissionChangeFailed = zerr.New("failed to change file permissions")

	// ErrCacheReadFailed is returned when the checksum cache cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read checksum cache")

	// ErrCacheUnmarshalFailed is returned when the checksum cache cannot be decoded.
	ErrCacheUnmarshalFailed = zerr.New("failed to unmarshal checksum cache")

	// ErrCacheMarshalFailed is returned when the checksum cache cannot be encoded.
	ErrCacheMarshalFailed = zerr.New("failed to marshal checksum cache")

	// ErrCacheWriteFailed is returned when the checksum cache cannot be written.
	ErrCacheWriteFailed = zerr.New("failed to write checksum cache")

	// ErrCacheCreateFailed is returned when the cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")

	// ErrLocked is returned when another kiln process holds the workspace lock.
	ErrLocked = zerr.New("another kiln process is already running in this workspace")

	// ErrLockFailed is returned when the workspace lock cannot be acquired or released.
	ErrLockFailed = zerr.New("failed to acquire workspace lock")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrTemplateUnavailable is returned when no binding template source could be read.
	ErrTemplateUnavailable = zerr.New("binding template unavailable")

	// ErrTemplateFetchFailed is returned when the remote binding template cannot be fetched.
	ErrTemplateFetchFailed = zerr.New("failed to fetch remote binding template")

	// ErrBindingsWriteFailed is returned when the generated binding file cannot be written.
	ErrBindingsWriteFailed = zerr.New("failed to write binding file")

	// ErrSpeechFailed is recorded when text-to-speech synthesis fails for one line.
	ErrSpeechFailed = zerr.New("speech synthesis failed")

	// ErrSpeechKeyMissing is returned when no API key is available for speech synthesis.
	ErrSpeechKeyMissing = zerr.New("speech API key not set")

	// ErrWatcherFailed is returned when the file system watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to start file watcher")

	// ErrBuildFailed is returned when a batch build aborts.
	ErrBuildFailed = zerr.New("build failed")
)
