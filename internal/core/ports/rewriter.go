package ports

import "github.com/SkeneZr/cc-rules/internal/core/domain"

// Rewriter is the deferred-rewrite hook the scheduler invokes on a unit
// immediately before any of its steps execute, once the unit's transitive
// dependency set is fully declared.
//
//go:generate go run go.uber.org/mock/mockgen -source=rewriter.go -destination=mocks/mock_rewriter.go -package=mocks
type Rewriter interface {
	// Rewrite overwrites the unit's step commands from its transitive label
	// closure. Idempotent: a second call against an unchanged closure
	// produces byte-identical commands.
	Rewrite(u *domain.Unit) error
}
