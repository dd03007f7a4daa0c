package domain

import (
	"path"
	"strings"
)

// outRoot is the root of all generated artifacts, relative to the workspace.
const outRoot = "out"

// OutputDir returns the per-profile output directory of a unit. Keeping the
// profile in the path isolates dbg/opt/cover artifacts from one another.
func OutputDir(p Profile, unit InternedString) string {
	return path.Join(outRoot, string(p), unit.String())
}

// OutputPath returns the path of a named artifact inside a unit's output directory.
func OutputPath(p Profile, unit InternedString, name string) string {
	return path.Join(OutputDir(p, unit), name)
}

// ArtifactRef returns a profile-independent reference to a unit's artifact.
// Labels carry these instead of concrete paths because artifacts are
// isolated per profile; RefPath resolves them when a command is synthesized.
func ArtifactRef(unit InternedString, name string) string {
	return path.Join(unit.String(), name)
}

// RefPath resolves an artifact reference to its path under a profile.
func RefPath(p Profile, ref string) string {
	return path.Join(outRoot, string(p), ref)
}

// ArchiveName returns the basename of a unit's final static archive.
func ArchiveName(unit InternedString) string {
	return "lib" + unit.String() + ".a"
}

// SourceArchiveName returns the basename of the single-object archive
// produced for one source of a multi-source unit.
func SourceArchiveName(src string) string {
	return srcStem(src) + "_src.a"
}

// ObjectName returns the basename of the object compiled from a source file.
func ObjectName(src string) string {
	return srcStem(src) + ".o"
}

// SharedObjectName returns the basename of a unit's shared library.
func SharedObjectName(unit InternedString) string {
	return "lib" + unit.String() + ".so"
}

// InterfaceName returns the basename of a module unit's precompiled interface.
func InterfaceName(unit InternedString) string {
	return unit.String() + ".gcm"
}

// srcStem flattens a source path into an artifact stem: extension dropped,
// directory separators folded into the name. All of a unit's per-source
// artifacts share one output directory, so the stem must stay unique for
// sources that differ only in their directory.
func srcStem(src string) string {
	base := path.Base(src)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if dir := path.Dir(src); dir != "." {
		base = strings.ReplaceAll(dir, "/", "_") + "_" + base
	}
	return base
}
