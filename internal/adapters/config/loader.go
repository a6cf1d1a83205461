// Package config provides the configuration loader for kiln.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	goos   string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, goos: runtime.GOOS}
}

// WithGOOS overrides the platform used to pick tool defaults.
func (l *Loader) WithGOOS(goos string) *Loader {
	l.goos = goos
	return l
}

// Load finds kiln.yaml from cwd upwards and resolves it over the platform defaults.
// Without a config file the defaults are resolved against cwd.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	kilnfile := Defaults(l.goos)

	configPath, found, err := findConfiguration(absCwd)
	if err != nil {
		return nil, err
	}

	root := absCwd
	if !found && l.Logger != nil {
		l.Logger.Info(fmt.Sprintf("no %s found, using %s defaults", domain.ConfigFileName, l.goos))
	}
	if found {
		if err := readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		root = filepath.Dir(configPath)
	}

	return resolve(root, &kilnfile)
}

func findConfiguration(cwd string) (string, bool, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		_, err := os.Stat(candidate)
		if err == nil {
			return candidate, true, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", candidate)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", false, nil
		}
		currentDir = parentDir
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// Keys absent from the file keep the target's current values.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

func resolve(root string, k *Kilnfile) (*domain.Config, error) {
	if k.Parallelism < 0 {
		return nil, zerr.With(domain.ErrInvalidConfig, "parallelism", k.Parallelism)
	}
	if k.Watch.Debounce <= 0 {
		return nil, zerr.With(domain.ErrInvalidConfig, "watch.debounce", k.Watch.Debounce.String())
	}
	if k.Watch.SuppressionTTL <= 0 {
		return nil, zerr.With(domain.ErrInvalidConfig, "watch.suppression_ttl", k.Watch.SuppressionTTL.String())
	}

	parallelism := k.Parallelism
	if parallelism == 0 {
		parallelism = runtime.NumCPU()
	}

	aliases := make(map[string]string, len(k.LipSync.CharacterAliases))
	for from, to := range k.LipSync.CharacterAliases {
		aliases[from] = to
	}

	return &domain.Config{
		Root:           root,
		Source:         resolvePath(root, k.Source),
		Output:         resolvePath(root, k.Output),
		Cache:          resolvePath(root, k.Cache),
		Parallelism:    parallelism,
		ReadOnly:       k.ReadOnly,
		ExportTemplate: resolvePath(root, k.ExportTemplate),
		Tools: domain.ToolsConfig{
			Animation:  k.Tools.Animation,
			LipSync:    k.Tools.LipSync,
			Script:     k.Tools.Script,
			Transcoder: k.Tools.Transcoder,
		},
		Bindings: domain.BindingsConfig{
			Output:       resolvePath(root, k.Bindings.Output),
			Reference:    resolvePath(root, k.Bindings.Reference),
			ReferenceURL: k.Bindings.ReferenceURL,
		},
		LipSync: domain.LipSyncConfig{
			Output:           resolvePath(root, k.LipSync.Output),
			CharacterAliases: aliases,
		},
		Watch: domain.WatchConfig{
			Debounce:       k.Watch.Debounce,
			SuppressionTTL: k.Watch.SuppressionTTL,
		},
		Speech: domain.SpeechConfig{
			Model:     k.Speech.Model,
			Voice:     k.Speech.Voice,
			APIKeyEnv: k.Speech.APIKeyEnv,
			Locale:    k.Speech.Locale,
		},
	}, nil
}

func resolvePath(root, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(root, path))
}
