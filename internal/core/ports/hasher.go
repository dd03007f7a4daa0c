package ports

import "github.com/SkeneZr/cc-rules/internal/core/domain"

// Hasher defines the interface for fingerprinting build steps.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint computes a stable hash of a step's command and source
	// contents for one profile. An unchanged fingerprint means the step's
	// outputs are already current.
	Fingerprint(step *domain.Step, profile domain.Profile, root string) (string, error)
}