package domain

// Toolchain is the immutable toolchain configuration threaded through
// command synthesis. It replaces the ambient global configuration the
// original system relied on: every path and default flag is explicit.
type Toolchain struct {
	// CC is the C compiler driver, also used for linking C units.
	CC string
	// CXX is the C++ compiler driver, the default for compilation and linking.
	CXX string
	// AR is the archiver.
	AR string
	// PkgConfig is the pkg-config binary named inside synthesized commands.
	// It is shell-evaluated at execution time, so it need not exist merely
	// to describe the graph.
	PkgConfig string

	// DbgFlags and OptFlags are the per-profile default compiler flags.
	// Defaults come first in synthesized commands so explicit unit flags can
	// override them.
	DbgFlags []string
	OptFlags []string

	// CoverageEnabled switches the cover profile from plain dbg flags to
	// dbg flags plus coverage instrumentation.
	CoverageEnabled bool
}

// DefaultToolchain returns the stock toolchain configuration.
func DefaultToolchain() Toolchain {
	return Toolchain{
		CC:        "cc",
		CXX:       "c++",
		AR:        "ar",
		PkgConfig: "pkg-config",
		DbgFlags:  []string{"-g3", "-pipe", "-DDEBUG", "-Wall"},
		OptFlags:  []string{"-O2", "-pipe", "-DNDEBUG", "-Wall"},
	}
}

// Compiler returns the driver for the given language flag.
func (t Toolchain) Compiler(c bool) string {
	if c {
		return t.CC
	}
	return t.CXX
}

// ProfileFlags returns the default compiler flags for a profile.
func (t Toolchain) ProfileFlags(p Profile) []string {
	switch p {
	case ProfileOpt:
		return t.OptFlags
	case ProfileCover:
		if t.CoverageEnabled {
			flags := make([]string, 0, len(t.DbgFlags)+1)
			flags = append(flags, t.DbgFlags...)
			return append(flags, "--coverage")
		}
		return t.DbgFlags
	default:
		return t.DbgFlags
	}
}
