package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds kiln.yaml from the given working directory upwards and resolves the configuration.
	// Without a config file the platform defaults are resolved against cwd.
	Load(cwd string) (*domain.Config, error)
}
