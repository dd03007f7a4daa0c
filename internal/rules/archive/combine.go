// Package archive merges per-source archives into a unit's final archive.
package archive

import (
	"strings"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

// Combiner synthesizes the archive-merge command for multi-source units.
// The merge extracts every member object and re-adds it with a fresh symbol
// index; the compiler is never re-invoked. Given the same input archives in
// the same order the command is byte-identical, and the resulting member set
// is reproducible modulo the archiver itself.
type Combiner struct {
	tc domain.Toolchain
}

// New creates a Combiner.
func New(tc domain.Toolchain) *Combiner {
	return &Combiner{tc: tc}
}

// Combine returns the shell command producing out from the given archives.
// Extraction happens in a scratch directory next to the output so member
// objects never collide with workspace files. The trailing "rcs" rebuilds
// the symbol index, so no separate ranlib pass is needed.
func (c *Combiner) Combine(out string, archives []string) string {
	scratch := out + ".tmp"

	var b strings.Builder
	b.WriteString(`D="$(pwd)"`)
	b.WriteString(` && rm -rf "` + scratch + `"`)
	b.WriteString(` && mkdir -p "` + scratch + `"`)
	b.WriteString(` && cd "` + scratch + `"`)
	b.WriteString(` && for a in`)
	for _, a := range archives {
		b.WriteString(` "$D/` + a + `"`)
	}
	b.WriteString(`; do "` + c.tc.AR + `" x "$a"; done`)
	// Shell glob expansion is sorted, so the member order does not depend on
	// extraction order.
	b.WriteString(` && "` + c.tc.AR + `" rcs "$D/` + out + `" *.o`)
	return b.String()
}
