package ports

import "github.com/SkeneZr/cc-rules/internal/core/domain"

// StepResultStore defines the interface for persisting step fingerprints
// between runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StepResultStore interface {
	// Get retrieves the recorded result for a store key.
	// Returns nil, nil if not found.
	Get(key string) (*domain.StepResult, error)

	// Put stores the result.
	Put(result domain.StepResult) error
}
