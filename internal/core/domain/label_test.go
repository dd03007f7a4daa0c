package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

func TestLabelSet_AddDeduplicates(t *testing.T) {
	var s domain.LabelSet

	assert.True(t, s.Add(domain.Label{Category: domain.CategoryPkgConfigLib, Value: "zlib"}))
	assert.False(t, s.Add(domain.Label{Category: domain.CategoryPkgConfigLib, Value: "zlib"}))
	// Same value under a different category is a distinct label.
	assert.True(t, s.Add(domain.Label{Category: domain.CategoryPkgConfigCflag, Value: "zlib"}))

	assert.Equal(t, []string{"zlib"}, s.Values(domain.CategoryPkgConfigLib))
	assert.Equal(t, 2, s.Len())
}

func TestLabelSet_OrderPreserved(t *testing.T) {
	var s domain.LabelSet
	s.Add(domain.Label{Category: domain.CategoryLinkerFlag, Value: "-lm"})
	s.Add(domain.Label{Category: domain.CategoryLinkerFlag, Value: "-pthread"})
	s.Add(domain.Label{Category: domain.CategoryLinkerFlag, Value: "-lm"})

	assert.Equal(t, []string{"-lm", "-pthread"}, s.Values(domain.CategoryLinkerFlag))
}

func TestLabelSet_Merge_FirstSeenWins(t *testing.T) {
	var a, b domain.LabelSet
	a.Add(domain.Label{Category: domain.CategoryDefine, Value: "FOO"})
	b.Add(domain.Label{Category: domain.CategoryDefine, Value: "BAR"})
	b.Add(domain.Label{Category: domain.CategoryDefine, Value: "FOO"})
	b.Add(domain.Label{Category: domain.CategoryIncludeDir, Value: "third_party/inc"})

	a.Merge(&b)

	assert.Equal(t, []string{"FOO", "BAR"}, a.Values(domain.CategoryDefine))
	assert.Equal(t, []string{"third_party/inc"}, a.Values(domain.CategoryIncludeDir))
}

func TestLabelSet_Empty(t *testing.T) {
	var s domain.LabelSet
	assert.True(t, s.Empty())
	s.Add(domain.Label{Category: domain.CategoryDefine, Value: "X"})
	assert.False(t, s.Empty())
}

func TestCategory_String(t *testing.T) {
	want := map[domain.Category]string{
		domain.CategoryLinkerFlag:        "linker-flag",
		domain.CategoryPkgConfigLib:      "pkg-config-lib",
		domain.CategoryPkgConfigCflag:    "pkg-config-cflag",
		domain.CategoryIncludeDir:        "include-dir",
		domain.CategoryDefine:            "define",
		domain.CategoryModuleInterface:   "module-interface-path",
		domain.CategoryAlwaysLinkArchive: "alwayslink-archive-path",
	}
	for _, c := range domain.Categories() {
		assert.Equal(t, want[c], c.String())
	}
}
