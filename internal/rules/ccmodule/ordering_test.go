package ccmodule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/rules/ccmodule"
)

func TestInterfaceStep(t *testing.T) {
	o := ccmodule.New()
	u := &domain.Unit{
		Name:      domain.NewInternedString("netmod"),
		Kind:      domain.KindModule,
		Interface: "net/netmod.cppm",
		Deps:      []domain.InternedString{domain.NewInternedString("base")},
	}

	step, err := o.InterfaceStep(u)
	require.NoError(t, err)

	assert.Equal(t, "netmod#interface", step.ID.String())
	assert.Equal(t, domain.StepInterface, step.Kind)
	assert.Equal(t, []string{"net/netmod.cppm"}, step.Srcs)
	assert.Equal(t, "netmod.gcm", step.OutName)
	// Imported modules' pipelines must finish before the precompile runs.
	require.Len(t, step.Dependencies, 1)
	assert.Equal(t, "base", step.Dependencies[0].String())
}

func TestInterfaceStep_MissingInterface(t *testing.T) {
	o := ccmodule.New()
	u := &domain.Unit{Name: domain.NewInternedString("broken"), Kind: domain.KindModule}

	_, err := o.InterfaceStep(u)
	assert.ErrorIs(t, err, domain.ErrMissingInterface)
}

func TestInterfaceRef(t *testing.T) {
	o := ccmodule.New()
	u := &domain.Unit{Name: domain.NewInternedString("netmod"), Kind: domain.KindModule}

	assert.Equal(t, "netmod/netmod.gcm", o.InterfaceRef(u))
}
