package ports

import "go.trai.ch/warm/internal/core/domain"

// ConfigLoader loads the pipeline configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory and
	// returns the validated pipeline.
	Load(cwd string) (*domain.Pipeline, error)
}
