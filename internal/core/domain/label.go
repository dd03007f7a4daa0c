package domain

// Category classifies a requirement label. The original system encoded these
// as string prefixes on free-form labels; here each category is a distinct
// enum value so payloads never need parsing.
type Category int

const (
	// CategoryLinkerFlag carries a literal linker flag for descendant links.
	CategoryLinkerFlag Category = iota
	// CategoryPkgConfigLib names a pkg-config package whose --libs output is
	// appended to descendant link commands.
	CategoryPkgConfigLib
	// CategoryPkgConfigCflag names a pkg-config package whose --cflags output
	// is appended to descendant compile commands.
	CategoryPkgConfigCflag
	// CategoryIncludeDir carries a directory added as a system include path.
	CategoryIncludeDir
	// CategoryDefine carries a preprocessor token (NAME or NAME=VALUE).
	CategoryDefine
	// CategoryModuleInterface carries the path of a precompiled module
	// interface artifact consumed by descendant compiles.
	CategoryModuleInterface
	// CategoryAlwaysLinkArchive carries the path of an archive that must be
	// wrapped in whole-archive markers at link time.
	CategoryAlwaysLinkArchive
)

// categories lists every category in a stable order for iteration.
var categories = []Category{
	CategoryLinkerFlag,
	CategoryPkgConfigLib,
	CategoryPkgConfigCflag,
	CategoryIncludeDir,
	CategoryDefine,
	CategoryModuleInterface,
	CategoryAlwaysLinkArchive,
}

// Categories returns all label categories in a stable order.
func Categories() []Category { return categories }

// String returns the category's wire-friendly name.
func (c Category) String() string {
	switch c {
	case CategoryLinkerFlag:
		return "linker-flag"
	case CategoryPkgConfigLib:
		return "pkg-config-lib"
	case CategoryPkgConfigCflag:
		return "pkg-config-cflag"
	case CategoryIncludeDir:
		return "include-dir"
	case CategoryDefine:
		return "define"
	case CategoryModuleInterface:
		return "module-interface-path"
	case CategoryAlwaysLinkArchive:
		return "alwayslink-archive-path"
	}
	return "unknown"
}

// Label is a typed requirement attached to a build unit and visible to every
// transitive consumer. Labels are declared once and never mutated.
type Label struct {
	Category Category
	Value    string
}

// LabelSet is an enum-keyed multimap of label payloads. Insertion order is
// preserved per category and duplicate (category, value) pairs are dropped,
// which is what keeps flags from being emitted twice downstream.
type LabelSet struct {
	order map[Category][]string
	seen  map[Category]map[string]struct{}
}

// Add records a label. It returns false if the identical pair was already present.
func (s *LabelSet) Add(l Label) bool {
	if s.seen == nil {
		s.order = make(map[Category][]string)
		s.seen = make(map[Category]map[string]struct{})
	}
	set, ok := s.seen[l.Category]
	if !ok {
		set = make(map[string]struct{})
		s.seen[l.Category] = set
	}
	if _, dup := set[l.Value]; dup {
		return false
	}
	set[l.Value] = struct{}{}
	s.order[l.Category] = append(s.order[l.Category], l.Value)
	return true
}

// Values returns the payloads of a category in first-seen order.
// The returned slice is a copy.
func (s *LabelSet) Values(c Category) []string {
	vals := s.order[c]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Merge adds every label of other into s, preserving other's internal order.
// First-seen wins: values already present in s keep their position.
func (s *LabelSet) Merge(other *LabelSet) {
	for _, c := range categories {
		for _, v := range other.order[c] {
			s.Add(Label{Category: c, Value: v})
		}
	}
}

// Empty reports whether no label of any category is present.
func (s *LabelSet) Empty() bool {
	for _, vals := range s.order {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Len returns the total number of distinct labels.
func (s *LabelSet) Len() int {
	n := 0
	for _, vals := range s.order {
		n += len(vals)
	}
	return n
}
