// Package propagate implements transitive label propagation and the deferred
// rewrite of synthesized commands.
//
// The work happens in two phases. Plan attaches each unit's declared
// requirements as labels, lowers units into schedulable steps and
// synthesizes baseline commands from the unit's own labels alone. Rewrite
// runs once a unit's transitive dependency set is fully declared: it gathers
// the label closure and re-derives every profile's command as a pure
// function of the unit's configuration and that closure. Nothing is patched
// in place, so re-running a rewrite against an unchanged closure yields
// byte-identical commands.
package propagate

import (
	"strings"
	"sync"

	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/rules/archive"
	"github.com/SkeneZr/cc-rules/internal/rules/ccmodule"
	"github.com/SkeneZr/cc-rules/internal/rules/synth"
)

// Engine owns label attachment, closure computation and command rewriting
// for one build graph. Rewrites mutate only their own unit's steps, so
// concurrent rewrites of unrelated units need no synchronization beyond the
// closure memo.
type Engine struct {
	synth    *synth.Synthesizer
	combiner *archive.Combiner
	modules  *ccmodule.Ordering

	graph *domain.Graph

	mu        sync.Mutex
	closures  map[domain.InternedString]*domain.LabelSet
	rewritten map[domain.InternedString]struct{}
}

// NewEngine creates an Engine for the given graph.
func NewEngine(s *synth.Synthesizer, c *archive.Combiner, m *ccmodule.Ordering, g *domain.Graph) *Engine {
	return &Engine{
		synth:     s,
		combiner:  c,
		modules:   m,
		graph:     g,
		closures:  make(map[domain.InternedString]*domain.LabelSet),
		rewritten: make(map[domain.InternedString]struct{}),
	}
}

// Attach records a label on a unit. Order is preserved per category and
// duplicate (category, value) pairs are dropped, which is what keeps a flag
// declared twice from being emitted twice in any descendant's command.
func (e *Engine) Attach(u *domain.Unit, c domain.Category, value string) {
	u.Labels.Add(domain.Label{Category: c, Value: value})
}

// Closure returns the set of labels visible to a unit: its own labels first,
// then those of every reachable dependency in depth-first declaration order.
// First-seen wins; the result is computed once and memoized, which is safe
// because labels are complete at declaration time.
func (e *Engine) Closure(name domain.InternedString) (*domain.LabelSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closureLocked(name)
}

func (e *Engine) closureLocked(name domain.InternedString) (*domain.LabelSet, error) {
	if set, ok := e.closures[name]; ok {
		return set, nil
	}

	unit, ok := e.graph.Unit(name)
	if !ok {
		return nil, zerr.With(domain.ErrUnitNotFound, "unit", name.String())
	}

	set := &domain.LabelSet{}
	set.Merge(&unit.Labels)
	for _, dep := range unit.Deps {
		depSet, err := e.closureLocked(dep)
		if err != nil {
			return nil, err
		}
		set.Merge(depSet)
	}

	e.closures[name] = set
	return set, nil
}

// Rewrite overwrites every step command of a unit using its transitive label
// closure. It is the deferred hook the host engine invokes immediately
// before the unit executes; invoking it again against the same closure is a
// no-op byte for byte. All three profiles are recomputed in one pass so
// dbg, opt and cover never drift apart. A unit whose closure holds no labels
// keeps its baseline commands untouched.
func (e *Engine) Rewrite(u *domain.Unit) error {
	closure, err := e.Closure(u.Name)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.rewritten[u.Name] = struct{}{}
	e.mu.Unlock()

	if closure.Empty() {
		// Baseline commands were synthesized from the unit's own labels,
		// which are a subset of the closure; nothing to add.
		return nil
	}

	e.synthesize(u, closure)
	return nil
}

// Rewritten reports whether a unit's deferred rewrite already ran.
func (e *Engine) Rewritten(name domain.InternedString) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.rewritten[name]
	return ok
}

// synthesize derives every step command of a unit for all profiles from the
// given label set. It is the single synthesis path: Plan calls it with the
// unit's own labels, Rewrite with the full closure.
func (e *Engine) synthesize(u *domain.Unit, labels *domain.LabelSet) {
	for _, p := range domain.Profiles() {
		cAug, lAug := e.augments(p, labels)
		for _, step := range u.Steps {
			step.Commands.Set(p, e.stepCommand(p, u, step, cAug, lAug))
		}
	}
}

// augments partitions a label set into compile- and link-side requirements
// for one profile. Artifact references resolve to per-profile paths here.
func (e *Engine) augments(p domain.Profile, labels *domain.LabelSet) (synth.CompileAugment, synth.LinkAugment) {
	cAug := synth.CompileAugment{
		IncludeDirs: labels.Values(domain.CategoryIncludeDir),
		Defines:     labels.Values(domain.CategoryDefine),
		CflagPkgs:   labels.Values(domain.CategoryPkgConfigCflag),
	}
	for _, ref := range labels.Values(domain.CategoryModuleInterface) {
		cAug.ModuleFiles = append(cAug.ModuleFiles, domain.RefPath(p, ref))
	}

	lAug := synth.LinkAugment{
		LinkerFlags: labels.Values(domain.CategoryLinkerFlag),
		LibPkgs:     labels.Values(domain.CategoryPkgConfigLib),
	}
	for _, ref := range labels.Values(domain.CategoryAlwaysLinkArchive) {
		lAug.AlwaysLinkArchives = append(lAug.AlwaysLinkArchives, domain.RefPath(p, ref))
	}

	return cAug, lAug
}

// stepCommand synthesizes one step's command for one profile.
func (e *Engine) stepCommand(p domain.Profile, u *domain.Unit, step *domain.Step, cAug synth.CompileAugment, lAug synth.LinkAugment) string {
	switch step.Kind {
	case domain.StepCompile:
		spec := synth.CompileSpec{
			C:         u.C,
			Src:       step.Srcs[0],
			Flags:     u.CompilerFlags,
			CflagPkgs: u.PkgConfigLibs,
			Aug:       cAug,
		}
		if strings.HasSuffix(step.OutName, ".a") {
			spec.Object = domain.OutputPath(p, u.Name, domain.ObjectName(step.Srcs[0]))
			spec.Archive = step.Output(p)
		} else {
			spec.Object = step.Output(p)
		}
		return e.synth.Compile(p, spec)

	case domain.StepInterface:
		// The unit's own interface label is for consumers; the precompile
		// producing that artifact must not import it.
		own := step.Output(p)
		aug := cAug
		aug.ModuleFiles = nil
		for _, m := range cAug.ModuleFiles {
			if m != own {
				aug.ModuleFiles = append(aug.ModuleFiles, m)
			}
		}
		return e.synth.Interface(p, synth.InterfaceSpec{
			Src:       step.Srcs[0],
			Out:       step.Output(p),
			Flags:     u.CompilerFlags,
			CflagPkgs: u.PkgConfigLibs,
			Aug:       aug,
		})

	case domain.StepCombine:
		members := make([]string, len(step.Members))
		for i, m := range step.Members {
			members[i] = domain.OutputPath(p, u.Name, m)
		}
		return e.combiner.Combine(step.Output(p), members)

	case domain.StepLink:
		archives := make([]string, len(step.ArchiveRefs))
		for i, ref := range step.ArchiveRefs {
			archives[i] = domain.RefPath(p, ref)
		}
		return e.synth.Link(p, synth.LinkSpec{
			C:           u.C,
			Srcs:        step.Srcs,
			Archives:    archives,
			Out:         step.Output(p),
			Flags:       u.CompilerFlags,
			LinkerFlags: u.LinkerFlags,
			LibPkgs:     u.PkgConfigLibs,
			CflagPkgs:   u.PkgConfigLibs,
			Static:      u.Static,
			Shared:      u.Kind == domain.KindSharedObject,
			CompileAug:  cAug,
			LinkAug:     lAug,
		})
	}
	return ""
}
