// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

// Executor defines the interface for running one build step's command.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the step's command for the given profile. The command is
	// a shell string; pkg-config backticks inside it are evaluated here, at
	// execution time. A toolchain failure is propagated verbatim with the
	// subprocess's own diagnostics attached.
	Execute(ctx context.Context, step *domain.Step, profile domain.Profile) error
}
