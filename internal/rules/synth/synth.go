// Package synth builds the exact compile, link and interface-precompile
// invocation strings for each build profile. Commands are plain shell
// strings: pkg-config calls are embedded in backticks so they are evaluated
// when the step runs, not when the graph is described.
package synth

import (
	"strings"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/platform"
)

// Synthesizer derives invocation strings from an immutable toolchain
// configuration and a platform policy. It holds no mutable state, so one
// instance serves concurrent rewrites of unrelated units.
type Synthesizer struct {
	tc     domain.Toolchain
	policy platform.Policy
}

// New creates a Synthesizer.
func New(tc domain.Toolchain, policy platform.Policy) *Synthesizer {
	return &Synthesizer{tc: tc, policy: policy}
}

// Toolchain returns the toolchain configuration in use.
func (s *Synthesizer) Toolchain() domain.Toolchain { return s.tc }

// CompileAugment carries the compile-side requirements derived from a unit's
// label closure. All slices are already deduplicated in first-seen order.
type CompileAugment struct {
	IncludeDirs []string
	Defines     []string
	ModuleFiles []string
	CflagPkgs   []string
}

// LinkAugment carries the link-side requirements derived from a unit's label
// closure.
type LinkAugment struct {
	LinkerFlags        []string
	LibPkgs            []string
	AlwaysLinkArchives []string
}

// CompileSpec describes one compile step.
type CompileSpec struct {
	// C selects the C driver; the default is C++.
	C bool
	// Src is the single source file this step compiles.
	Src string
	// Object is the output object path.
	Object string
	// Archive, when non-empty, appends an archive step so the object lands
	// in a single-object archive. The archive tail is joined with "&&" so
	// tooling can recover the bare compile invocation.
	Archive string
	// Flags are the unit's explicit compiler flags.
	Flags []string
	// CflagPkgs are pkg-config package names contributing --cflags.
	CflagPkgs []string
	// Aug is the label-derived augmentation.
	Aug CompileAugment
}

// Compile returns the compile (and optionally archive) command for a profile.
func (s *Synthesizer) Compile(p domain.Profile, spec CompileSpec) string {
	var b strings.Builder
	b.WriteString(quote(s.tc.Compiler(spec.C)))
	b.WriteString(" -c -I .")
	b.WriteString(" -o ")
	b.WriteString(quote(spec.Object))
	s.writeBuildFlags(&b, p, spec.Flags, spec.CflagPkgs, spec.Aug, false)
	b.WriteByte(' ')
	b.WriteString(quote(spec.Src))
	if spec.Archive != "" {
		b.WriteString(" && ")
		b.WriteString(quote(s.tc.AR))
		b.WriteString(" rcs ")
		b.WriteString(quote(spec.Archive))
		b.WriteByte(' ')
		b.WriteString(quote(spec.Object))
	}
	return b.String()
}

// InterfaceSpec describes a module interface precompile step.
type InterfaceSpec struct {
	// Src is the module interface source file.
	Src string
	// Out is the precompiled interface artifact path.
	Out string
	// Flags are the unit's explicit compiler flags.
	Flags []string
	// CflagPkgs are pkg-config package names contributing --cflags.
	CflagPkgs []string
	// Aug is the label-derived augmentation; imported interfaces arrive here
	// as module files.
	Aug CompileAugment
}

// Interface returns the interface precompile command for a profile. The
// produced artifact is consumable by dependent compiles but is not a
// linkable object.
func (s *Synthesizer) Interface(p domain.Profile, spec InterfaceSpec) string {
	var b strings.Builder
	b.WriteString(quote(s.tc.CXX))
	b.WriteString(" -fmodules-ts -x c++ -c -I .")
	b.WriteString(" -o ")
	b.WriteString(quote(spec.Out))
	s.writeBuildFlags(&b, p, spec.Flags, spec.CflagPkgs, spec.Aug, true)
	b.WriteByte(' ')
	b.WriteString(quote(spec.Src))
	return b.String()
}

// LinkSpec describes one link step. Sources are handed to the driver
// directly, so compile and link happen in a single invocation.
type LinkSpec struct {
	C bool
	// Srcs are the unit's own sources, compiled and linked in one pass.
	Srcs []string
	// Archives are the transitive dependency archives, in link order.
	Archives []string
	// Out is the output executable or shared object path.
	Out string
	// Flags are the unit's explicit compiler flags.
	Flags []string
	// LinkerFlags are the unit's explicit linker flags, untranslated.
	LinkerFlags []string
	// LibPkgs are pkg-config package names contributing --libs.
	LibPkgs []string
	// CflagPkgs are pkg-config package names contributing --cflags.
	CflagPkgs []string
	// Static forces a fully static link; Shared produces a shared object.
	Static bool
	Shared bool
	// CompileAug and LinkAug are the label-derived augmentations.
	CompileAug CompileAugment
	LinkAug    LinkAugment
}

// Link returns the link command for a profile.
func (s *Synthesizer) Link(p domain.Profile, spec LinkSpec) string {
	var b strings.Builder
	b.WriteString(quote(s.tc.Compiler(spec.C)))
	b.WriteString(" -o ")
	b.WriteString(quote(spec.Out))
	b.WriteString(" -I .")
	for _, src := range spec.Srcs {
		b.WriteByte(' ')
		b.WriteString(quote(src))
	}
	s.writeBuildFlags(&b, p, spec.Flags, spec.CflagPkgs, spec.CompileAug, false)

	if spec.Static {
		b.WriteString(" -static")
	}
	if spec.Shared {
		b.WriteString(" -shared")
	}

	s.writeArchives(&b, spec.Archives, spec.LinkAug.AlwaysLinkArchives)

	if flag := s.policy.BuildIDSuppression(); flag != "" {
		b.WriteByte(' ')
		b.WriteString(forward(flag))
	}

	for _, f := range mergeUnique(spec.LinkerFlags, spec.LinkAug.LinkerFlags) {
		b.WriteByte(' ')
		b.WriteString(forward(f))
	}

	for _, pkg := range mergeUnique(spec.LibPkgs, spec.LinkAug.LibPkgs) {
		b.WriteByte(' ')
		b.WriteString(s.pkgConfig("--libs", pkg))
	}

	return b.String()
}

// writeArchives emits the archive list, wrapping alwayslink archives in the
// platform's whole-archive markers and the whole list in group markers when
// the linker supports grouping.
func (s *Synthesizer) writeArchives(b *strings.Builder, archives, alwaysLink []string) {
	if len(archives) == 0 {
		return
	}

	always := make(map[string]struct{}, len(alwaysLink))
	for _, a := range alwaysLink {
		always[a] = struct{}{}
	}
	beginWhole, endWhole := s.policy.WholeArchive()

	if s.policy.SupportsGroupLinking() {
		b.WriteString(" " + forward("--start-group"))
	}
	for _, a := range archives {
		if _, ok := always[a]; ok {
			b.WriteString(" " + forward(beginWhole))
			b.WriteString(" " + quote(a))
			b.WriteString(" " + forward(endWhole))
		} else {
			b.WriteString(" " + quote(a))
		}
	}
	if s.policy.SupportsGroupLinking() {
		b.WriteString(" " + forward("--end-group"))
	}
}

// writeBuildFlags emits the shared compile-flag section: profile defaults
// first so explicit flags can override them, then position independence,
// defines, system includes, module flags and execution-time pkg-config
// cflags.
func (s *Synthesizer) writeBuildFlags(b *strings.Builder, p domain.Profile, flags, cflagPkgs []string, aug CompileAugment, modulesEnabled bool) {
	for _, f := range s.tc.ProfileFlags(p) {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	for _, f := range flags {
		b.WriteByte(' ')
		b.WriteString(f)
	}
	b.WriteString(" -fPIC")
	for _, d := range aug.Defines {
		b.WriteString(" -D")
		b.WriteString(d)
	}
	for _, dir := range aug.IncludeDirs {
		b.WriteString(" -isystem ")
		b.WriteString(quote(dir))
	}
	if len(aug.ModuleFiles) > 0 {
		// The enabling flag appears exactly when at least one interface
		// does, unless the command carries it already.
		if !modulesEnabled {
			b.WriteString(" -fmodules-ts")
		}
		for _, m := range aug.ModuleFiles {
			b.WriteString(" -fmodule-file=")
			b.WriteString(m)
		}
	}
	for _, pkg := range mergeUnique(cflagPkgs, aug.CflagPkgs) {
		b.WriteByte(' ')
		b.WriteString(s.pkgConfig("--cflags", pkg))
	}
}

// pkgConfig renders a backtick-quoted pkg-config call, evaluated by the
// shell when the step executes. An unresolved package fails the owning step
// at that point; there is no fallback.
func (s *Synthesizer) pkgConfig(mode, pkg string) string {
	return "`" + quote(s.tc.PkgConfig) + " " + mode + " " + pkg + "`"
}

// forward routes a flag through the compiler driver to the linker. The
// driver's forwarding syntax cannot carry embedded spaces, so multi-word
// flags are comma-joined.
func forward(flag string) string {
	if strings.HasPrefix(flag, "-Wl,") {
		return flag
	}
	return "-Wl," + strings.ReplaceAll(flag, " ", ",")
}

// mergeUnique concatenates both lists, dropping duplicates while preserving
// first-seen order.
func mergeUnique(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// quote wraps a path or tool name in double quotes for the shell.
func quote(s string) string {
	return `"` + s + `"`
}
