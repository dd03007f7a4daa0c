package domain

// StepKind classifies a schedulable build action.
type StepKind string

const (
	// StepCompile compiles one or more sources, archiving the result when the
	// owning unit produces an archive.
	StepCompile StepKind = "compile"
	// StepCombine merges per-source archives into the unit's final archive.
	StepCombine StepKind = "combine"
	// StepLink links objects and archives into a binary or shared object.
	StepLink StepKind = "link"
	// StepInterface precompiles a module interface file.
	StepInterface StepKind = "interface"
)

// Step is one schedulable action lowered from a build unit. Multi-source
// units fan out into one compile step per source so a single changed source
// recompiles alone; interface precompiles are ordinary steps so the graph's
// cycle detection covers module import cycles.
type Step struct {
	ID   InternedString
	Unit InternedString
	Kind StepKind

	// Srcs are the source files consumed by this step, if any.
	Srcs []string

	// OutName is the basename of the artifact this step produces inside the
	// owning unit's per-profile output directory.
	OutName string

	// Members are the basenames of the per-source archives a combine step
	// merges, all inside the owning unit's output directory.
	Members []string

	// ArchiveRefs are profile-independent artifact references (see
	// ArtifactRef) of the transitive dependency archives a link step
	// consumes, in link order.
	ArchiveRefs []string

	// Dependencies are the step IDs that must complete before this one runs.
	Dependencies []InternedString

	// Commands holds the synthesized invocation per profile. Overwritten in
	// one pass by the propagation engine's rewrite.
	Commands CommandSet
}

// Output returns the step's artifact path for the given profile. Artifacts
// are isolated per profile, module interfaces included, so no profile can
// consume another's output.
func (s *Step) Output(p Profile) string {
	if s.OutName == "" {
		return ""
	}
	return OutputPath(p, s.Unit, s.OutName)
}
