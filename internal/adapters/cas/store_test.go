package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkeneZr/cc-rules/internal/adapters/cas"
	"github.com/SkeneZr/cc-rules/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := cas.NewStore(path)
	require.NoError(t, err)

	result := domain.StepResult{
		StepID:      "lib",
		Profile:     domain.ProfileDbg,
		Fingerprint: "deadbeefdeadbeef",
		Timestamp:   time.Now(),
	}
	require.NoError(t, store.Put(result))

	got, err := store.Get(result.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "deadbeefdeadbeef", got.Fingerprint)

	// The same step under another profile is a distinct entry.
	missing, err := store.Get(domain.StepResult{StepID: "lib", Profile: domain.ProfileOpt}.Key())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := cas.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(domain.StepResult{
		StepID:      "bin",
		Profile:     domain.ProfileOpt,
		Fingerprint: "0123456789abcdef",
		Timestamp:   time.Now(),
	}))

	reopened, err := cas.NewStore(path)
	require.NoError(t, err)
	got, err := reopened.Get("bin@opt")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0123456789abcdef", got.Fingerprint)
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)

	got, err := store.Get("anything@dbg")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := cas.NewStore(path)
	assert.Error(t, err)
}
