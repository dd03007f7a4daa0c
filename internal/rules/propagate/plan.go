package propagate

import (
	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

// Plan is phase one: it attaches each unit's declared requirements as
// labels, lowers units into steps, synthesizes baseline commands from the
// unit's own labels and validates the resulting step graph. After Plan every
// step carries a command for every profile, satisfying the invariant that
// command sets are complete before any rewrite runs.
func (e *Engine) Plan() error {
	for u := range e.graph.Units() {
		for _, dep := range u.Deps {
			if _, ok := e.graph.Unit(dep); !ok {
				err := zerr.With(domain.ErrMissingDependency, "unit", u.Name.String())
				return zerr.With(err, "dependency", dep.String())
			}
		}
		e.attachDeclaredLabels(u)
	}

	for u := range e.graph.Units() {
		if err := e.lower(u); err != nil {
			return err
		}
	}

	for u := range e.graph.Units() {
		e.synthesize(u, &u.Labels)
	}

	return e.graph.Validate()
}

// attachDeclaredLabels converts a unit's configuration into labels so that
// the unit's own compile sees them through the same path as any descendant.
func (e *Engine) attachDeclaredLabels(u *domain.Unit) {
	for _, dir := range u.Includes {
		e.Attach(u, domain.CategoryIncludeDir, dir)
	}
	for _, def := range u.Defines {
		e.Attach(u, domain.CategoryDefine, def)
	}
	for _, flag := range u.LinkerFlags {
		e.Attach(u, domain.CategoryLinkerFlag, flag)
	}
	for _, pkg := range u.PkgConfigLibs {
		e.Attach(u, domain.CategoryPkgConfigLib, pkg)
	}
	for _, pkg := range u.PkgConfigCflags {
		e.Attach(u, domain.CategoryPkgConfigCflag, pkg)
	}
	if u.Alwayslink {
		e.Attach(u, domain.CategoryAlwaysLinkArchive, domain.ArtifactRef(u.Name, domain.ArchiveName(u.Name)))
	}
	if u.Kind == domain.KindModule {
		e.Attach(u, domain.CategoryModuleInterface, e.modules.InterfaceRef(u))
	}
}

// lower expands a unit into its schedulable steps.
func (e *Engine) lower(u *domain.Unit) error {
	var steps []*domain.Step
	var err error

	switch u.Kind {
	case domain.KindModule:
		steps, err = e.lowerModule(u)
	case domain.KindObject:
		steps, err = e.lowerObject(u)
	case domain.KindLibrary:
		steps, err = LowerArchiveSteps(u, nil)
	case domain.KindBinary, domain.KindTest, domain.KindSharedObject:
		steps, err = e.lowerLink(u)
	default:
		return zerr.With(domain.ErrUnknownKind, "kind", string(u.Kind))
	}
	if err != nil {
		return err
	}

	u.Steps = steps
	for _, s := range steps {
		if err := e.graph.AddStep(s); err != nil {
			return err
		}
	}
	return nil
}

// lowerModule produces a module unit's two-stage pipeline: the interface
// precompile, then the implementation compiles ordered after it.
func (e *Engine) lowerModule(u *domain.Unit) ([]*domain.Step, error) {
	iface, err := e.modules.InterfaceStep(u)
	if err != nil {
		return nil, err
	}
	impl, err := LowerArchiveSteps(u, []domain.InternedString{iface.ID})
	if err != nil {
		return nil, err
	}
	return append([]*domain.Step{iface}, impl...), nil
}

// lowerObject produces the single compile step of an object unit.
func (e *Engine) lowerObject(u *domain.Unit) ([]*domain.Step, error) {
	if len(u.Srcs) != 1 {
		return nil, zerr.With(domain.ErrNoSources, "unit", u.Name.String())
	}
	return []*domain.Step{{
		ID:           u.Name,
		Unit:         u.Name,
		Kind:         domain.StepCompile,
		Srcs:         u.Srcs[:1],
		OutName:      domain.ObjectName(u.Srcs[0]),
		Dependencies: depFinalSteps(u),
	}}, nil
}

// LowerArchiveSteps produces the compile steps of an archive-producing unit.
// With one source the final archive comes straight out of a single
// compile+archive step; with several, each source compiles into its own
// single-object archive so one changed source recompiles alone, and a
// combine step merges them. Both paths produce a final archive with the same
// object membership. extraDeps are prepended to every compile step's
// dependencies; module lowering uses this to order implementation compiles
// after the interface precompile.
func LowerArchiveSteps(u *domain.Unit, extraDeps []domain.InternedString) ([]*domain.Step, error) {
	if len(u.Srcs) == 0 {
		return nil, zerr.With(domain.ErrNoSources, "unit", u.Name.String())
	}

	deps := append(append([]domain.InternedString{}, extraDeps...), depFinalSteps(u)...)

	if len(u.Srcs) == 1 {
		return []*domain.Step{{
			ID:           u.Name,
			Unit:         u.Name,
			Kind:         domain.StepCompile,
			Srcs:         u.Srcs[:1],
			OutName:      domain.ArchiveName(u.Name),
			Dependencies: deps,
		}}, nil
	}

	steps := make([]*domain.Step, 0, len(u.Srcs)+1)
	members := make([]string, 0, len(u.Srcs))
	memberIDs := make([]domain.InternedString, 0, len(u.Srcs))
	for i, src := range u.Srcs {
		outName := domain.SourceArchiveName(src)
		id := domain.NewInternedString(u.Name.String() + "#" + src)
		steps = append(steps, &domain.Step{
			ID:           id,
			Unit:         u.Name,
			Kind:         domain.StepCompile,
			Srcs:         u.Srcs[i : i+1],
			OutName:      outName,
			Dependencies: deps,
		})
		members = append(members, outName)
		memberIDs = append(memberIDs, id)
	}

	steps = append(steps, &domain.Step{
		ID:           u.Name,
		Unit:         u.Name,
		Kind:         domain.StepCombine,
		OutName:      domain.ArchiveName(u.Name),
		Members:      members,
		Dependencies: memberIDs,
	})
	return steps, nil
}

// lowerLink produces the single compile-and-link step of a binary, test or
// shared object unit.
func (e *Engine) lowerLink(u *domain.Unit) ([]*domain.Step, error) {
	if len(u.Srcs) == 0 {
		return nil, zerr.With(domain.ErrNoSources, "unit", u.Name.String())
	}

	outName := u.Name.String()
	if u.Kind == domain.KindSharedObject {
		outName = domain.SharedObjectName(u.Name)
	}

	return []*domain.Step{{
		ID:           u.Name,
		Unit:         u.Name,
		Kind:         domain.StepLink,
		Srcs:         u.Srcs,
		OutName:      outName,
		ArchiveRefs:  e.transitiveArchives(u),
		Dependencies: depFinalSteps(u),
	}}, nil
}

// transitiveArchives gathers the artifact references of every reachable
// archive or object producing dependency, depth first in declaration order.
// Dependents come before their dependencies, the conventional static link
// order; the group markers added at synthesis make the residual order moot
// on platforms that support them.
func (e *Engine) transitiveArchives(u *domain.Unit) []string {
	var refs []string
	seen := map[domain.InternedString]struct{}{u.Name: {}}

	var visit func(name domain.InternedString)
	visit = func(name domain.InternedString) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}

		dep, ok := e.graph.Unit(name)
		if !ok {
			return
		}
		switch dep.Kind {
		case domain.KindLibrary, domain.KindModule:
			refs = append(refs, domain.ArtifactRef(dep.Name, domain.ArchiveName(dep.Name)))
		case domain.KindObject:
			if len(dep.Srcs) > 0 {
				refs = append(refs, domain.ArtifactRef(dep.Name, domain.ObjectName(dep.Srcs[0])))
			}
		}
		for _, d := range dep.Deps {
			visit(d)
		}
	}
	for _, d := range u.Deps {
		visit(d)
	}
	return refs
}

// depFinalSteps returns the final step ID of each direct dependency. Every
// dependency's final step doubles as its unit ID, so no lookup is needed.
func depFinalSteps(u *domain.Unit) []domain.InternedString {
	if len(u.Deps) == 0 {
		return nil
	}
	deps := make([]domain.InternedString, len(u.Deps))
	copy(deps, u.Deps)
	return deps
}
