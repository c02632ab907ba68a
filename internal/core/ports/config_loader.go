package ports

import "go.trai.ch/letterpress/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the pipeline file starting at path and returns the resolved pipeline.
	// path may name the pipeline file itself or a directory to search upwards from.
	Load(path string) (*domain.Pipeline, error)

	// DiscoverRoot walks up from cwd to find the directory holding the pipeline file.
	DiscoverRoot(cwd string) (string, error)
}
