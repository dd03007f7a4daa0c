package ports

import "github.com/SkeneZr/cc-rules/internal/core/domain"

// ConfigLoader defines the interface for loading the build description.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the build description from the given working directory and
	// returns the declared units as a graph. Steps are not lowered yet;
	// that is the propagation engine's planning phase.
	Load(cwd string) (*domain.Graph, error)
}
