// Package ccmodule sequences the two-step pipeline of a language module
// unit: the interface precompile, and the implementation compiles that
// consume it.
package ccmodule

import (
	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

// InterfaceStepSuffix distinguishes the interface precompile step from the
// unit's final step.
const InterfaceStepSuffix = "#interface"

// Ordering lowers module units into ordered steps. The interface precompile
// is an ordinary graph step, so modules importing one another's interfaces
// produce an ordinary dependency cycle that the graph rejects before any
// command runs.
type Ordering struct{}

// New creates an Ordering.
func New() *Ordering { return &Ordering{} }

// InterfaceStep builds the precompile step for a module's interface file.
// The produced artifact is consumable by dependent compiles but cannot be
// linked on its own; the unit's archive carries the linkable objects. The
// step depends on each imported module's pipeline so that every imported
// interface exists before this one compiles.
func (o *Ordering) InterfaceStep(u *domain.Unit) (*domain.Step, error) {
	if u.Interface == "" {
		return nil, zerr.With(domain.ErrMissingInterface, "unit", u.Name.String())
	}

	deps := make([]domain.InternedString, len(u.Deps))
	copy(deps, u.Deps)

	return &domain.Step{
		ID:           domain.NewInternedString(u.Name.String() + InterfaceStepSuffix),
		Unit:         u.Name,
		Kind:         domain.StepInterface,
		Srcs:         []string{u.Interface},
		OutName:      domain.InterfaceName(u.Name),
		Dependencies: deps,
	}, nil
}

// InterfaceRef returns the profile-independent reference of a module's
// interface artifact. Exposed as a module-interface-path label, it is what
// lets any transitive consumer receive the correct module-file flag without
// enumerating interfaces by hand.
func (o *Ordering) InterfaceRef(u *domain.Unit) string {
	return domain.ArtifactRef(u.Name, domain.InterfaceName(u.Name))
}
