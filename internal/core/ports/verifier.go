package ports

import "github.com/SkeneZr/cc-rules/internal/core/domain"

// Verifier defines the interface for checking step outputs.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// VerifyOutput checks that the step's declared artifact exists under
	// the given root after execution.
	VerifyOutput(root string, step *domain.Step, profile domain.Profile) (bool, error)
}
