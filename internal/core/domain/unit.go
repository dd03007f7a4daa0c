// Package domain contains the core model for build units, requirement labels
// and the step graph executed by the engine.
package domain

import "go.trai.ch/zerr"

// Kind classifies what a build unit produces.
type Kind string

const (
	// KindObject produces a single object file.
	KindObject Kind = "object"
	// KindLibrary produces a static archive.
	KindLibrary Kind = "library"
	// KindBinary produces an executable.
	KindBinary Kind = "binary"
	// KindSharedObject produces a shared library.
	KindSharedObject Kind = "shared_object"
	// KindModule produces a precompiled module interface plus an archive.
	KindModule Kind = "module"
	// KindTest produces a test executable.
	KindTest Kind = "test"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindObject, KindLibrary, KindBinary, KindSharedObject, KindModule, KindTest:
		return Kind(s), nil
	}
	return "", zerr.With(ErrUnknownKind, "kind", s)
}

// Linkable reports whether the unit's final step is a link.
func (k Kind) Linkable() bool {
	return k == KindBinary || k == KindSharedObject || k == KindTest
}

// Unit is one declared compilation or link target. It is created when a rule
// is declared, its step commands are overwritten by the propagation engine
// once the transitive closure is known, and it is discarded at the end of the
// build description.
type Unit struct {
	Name InternedString
	Kind Kind

	// C selects C compilation semantics; the default is C++.
	C bool

	Srcs        []string
	Hdrs        []string
	PrivateHdrs []string
	// Interface is the module interface source, set only for KindModule.
	Interface string

	Deps []InternedString

	CompilerFlags   []string
	LinkerFlags     []string
	PkgConfigLibs   []string
	PkgConfigCflags []string
	Includes        []string
	Defines         []string

	Alwayslink bool
	Static     bool

	// TestOnly and Visibility are access-control metadata consumed by the
	// host engine; they never alter synthesized commands.
	TestOnly   bool
	Visibility []string

	// Labels are the requirements this unit declares for itself and exports
	// to transitive consumers.
	Labels LabelSet

	// Steps are the schedulable actions this unit lowers to, in execution
	// order. The last step produces the unit's final artifact.
	Steps []*Step
}

// FinalStep returns the step producing the unit's final artifact, or nil if
// the unit has not been planned yet.
func (u *Unit) FinalStep() *Step {
	if len(u.Steps) == 0 {
		return nil
	}
	return u.Steps[len(u.Steps)-1]
}

// Artifact returns the path of the unit's final artifact for a profile.
func (u *Unit) Artifact(p Profile) string {
	if s := u.FinalStep(); s != nil {
		return s.Output(p)
	}
	return ""
}
