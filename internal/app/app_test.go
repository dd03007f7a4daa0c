package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/SkeneZr/cc-rules/internal/adapters/cas"
	"github.com/SkeneZr/cc-rules/internal/adapters/fs"
	"github.com/SkeneZr/cc-rules/internal/adapters/telemetry"
	"github.com/SkeneZr/cc-rules/internal/app"
	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports/mocks"
	"github.com/SkeneZr/cc-rules/internal/platform"
)

func testToolchain() domain.Toolchain {
	return domain.Toolchain{
		CC:        "cc",
		CXX:       "c++",
		AR:        "ar",
		PkgConfig: "pkg-config",
		DbgFlags:  []string{"-g"},
		OptFlags:  []string{"-O2"},
	}
}

// testWorkspace returns a loader that yields a small fixed workspace: a
// binary "tool" linking against a library "core".
func testWorkspace(ctrl *gomock.Controller) *mocks.MockConfigLoader {
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).DoAndReturn(func(string) (*domain.Graph, error) {
		g := domain.NewGraph()
		core := &domain.Unit{
			Name: domain.NewInternedString("core"),
			Kind: domain.KindLibrary,
			Srcs: []string{"core/core.cc"},
		}
		tool := &domain.Unit{
			Name: domain.NewInternedString("tool"),
			Kind: domain.KindBinary,
			Srcs: []string{"tool/main.cc"},
			Deps: []domain.InternedString{core.Name},
		}
		if err := g.AddUnit(core); err != nil {
			return nil, err
		}
		if err := g.AddUnit(tool); err != nil {
			return nil, err
		}
		return g, nil
	}).AnyTimes()
	return loader
}

func newTestApp(ctrl *gomock.Controller, loader *mocks.MockConfigLoader, executor *mocks.MockExecutor) *app.App {
	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Fingerprint(gomock.Any(), gomock.Any(), gomock.Any()).Return("fp", nil).AnyTimes()

	verifier := mocks.NewMockVerifier(ctrl)
	verifier.EXPECT().VerifyOutput(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	store := mocks.NewMockStepResultStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()

	return app.New(
		loader,
		executor,
		hasher,
		verifier,
		store,
		telemetry.NewNoOpTracer(),
		platform.GNU(),
		testToolchain(),
	)
}

func TestApp_Plan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := newTestApp(ctrl, testWorkspace(ctrl), mocks.NewMockExecutor(ctrl))

	plan, err := a.Plan(t.TempDir())
	require.NoError(t, err)

	// One compile+archive step for core, one link step for tool.
	assert.Equal(t, 2, plan.Graph.StepCount())

	tool, ok := plan.Graph.Unit(domain.NewInternedString("tool"))
	require.True(t, ok)
	cmd := tool.FinalStep().Commands.Get(domain.ProfileDbg)
	assert.Contains(t, cmd, `"tool/main.cc"`)
	assert.Contains(t, cmd, "out/dbg/tool/tool")
}

func TestApp_Plan_RewriteAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := newTestApp(ctrl, testWorkspace(ctrl), mocks.NewMockExecutor(ctrl))

	plan, err := a.Plan(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, plan.RewriteAll())

	tool, ok := plan.Graph.Unit(domain.NewInternedString("tool"))
	require.True(t, ok)
	assert.True(t, plan.Engine.Rewritten(tool.Name))
	assert.Contains(t, tool.FinalStep().Commands.Get(domain.ProfileDbg), "out/dbg/core/libcore.a")
}

func TestApp_Build(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	executor := mocks.NewMockExecutor(ctrl)
	var executed []string
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), domain.ProfileDbg).DoAndReturn(
		func(_ context.Context, step *domain.Step, _ domain.Profile) error {
			executed = append(executed, step.ID.String())
			return nil
		}).Times(2)

	a := newTestApp(ctrl, testWorkspace(ctrl), executor)

	err := a.Build(context.Background(), t.TempDir(), domain.ProfileDbg, []string{"tool"}, 1)
	require.NoError(t, err)

	require.Len(t, executed, 2)
	// The library archive must land before the binary that links it.
	assert.True(t, strings.HasPrefix(executed[0], "core"), "executed %v", executed)
	assert.True(t, strings.HasPrefix(executed[1], "tool"), "executed %v", executed)
}

func TestApp_Build_NoTargets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := newTestApp(ctrl, testWorkspace(ctrl), mocks.NewMockExecutor(ctrl))

	err := a.Build(context.Background(), t.TempDir(), domain.ProfileDbg, nil, 1)
	assert.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestApp_Build_UnknownTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := newTestApp(ctrl, testWorkspace(ctrl), mocks.NewMockExecutor(ctrl))

	err := a.Build(context.Background(), t.TempDir(), domain.ProfileDbg, []string{"ghost"}, 1)
	assert.ErrorIs(t, err, domain.ErrUnitNotFound)
}

func TestApp_Build_TargetScopesExecution(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, step *domain.Step, _ domain.Profile) error {
			if strings.HasPrefix(step.ID.String(), "tool") {
				t.Errorf("step %s outside the target closure was executed", step.ID)
			}
			return nil
		}).Times(1)

	a := newTestApp(ctrl, testWorkspace(ctrl), executor)

	// Building only the library must not touch the binary's link step.
	err := a.Build(context.Background(), t.TempDir(), domain.ProfileDbg, []string{"core"}, 1)
	require.NoError(t, err)
}

func TestApp_Build_ExecutionFailureSentinel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bang := errors.New("compiler exploded")
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(bang)

	a := newTestApp(ctrl, testWorkspace(ctrl), executor)

	err := a.Build(context.Background(), t.TempDir(), domain.ProfileDbg, []string{"tool"}, 1)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, bang)
}

func TestApp_Build_IncrementalRebuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg/a.cc"), []byte("int a(){return 0;}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg/b.cc"), []byte("int b(){return 0;}"), 0o644))

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).DoAndReturn(func(string) (*domain.Graph, error) {
		g := domain.NewGraph()
		err := g.AddUnit(&domain.Unit{
			Name: domain.NewInternedString("many"),
			Kind: domain.KindLibrary,
			Srcs: []string{"pkg/a.cc", "pkg/b.cc"},
		})
		return g, err
	}).AnyTimes()

	// The executor writes each step's declared artifact with content
	// derived from the step's inputs, so downstream archives really change
	// when an upstream compile reruns.
	runs := make(map[string]int)
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, step *domain.Step, profile domain.Profile) error {
			runs[step.ID.String()]++
			var buf bytes.Buffer
			for _, src := range step.Srcs {
				data, err := os.ReadFile(filepath.Join(root, src))
				if err != nil {
					return err
				}
				buf.Write(data)
			}
			for _, member := range step.Members {
				data, err := os.ReadFile(filepath.Join(root, domain.OutputPath(profile, step.Unit, member)))
				if err != nil {
					return err
				}
				buf.Write(data)
			}
			outPath := filepath.Join(root, step.Output(profile))
			if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
				return err
			}
			return os.WriteFile(outPath, buf.Bytes(), 0o644)
		}).AnyTimes()

	store, err := cas.NewStore(filepath.Join(root, "out", "cc_state.json"))
	require.NoError(t, err)

	a := app.New(
		loader,
		executor,
		fs.NewHasher(),
		fs.NewVerifier(),
		store,
		telemetry.NewNoOpTracer(),
		platform.GNU(),
		testToolchain(),
	)

	build := func() {
		t.Helper()
		require.NoError(t, a.Build(context.Background(), root, domain.ProfileDbg, []string{"many"}, 1))
	}

	build()
	assert.Equal(t, 1, runs["many#pkg/a.cc"])
	assert.Equal(t, 1, runs["many#pkg/b.cc"])
	assert.Equal(t, 1, runs["many"])

	// Nothing changed, everything comes from cache.
	build()
	assert.Equal(t, 1, runs["many#pkg/a.cc"])
	assert.Equal(t, 1, runs["many"])

	// Editing one source reruns its compile and the combine that merges
	// its archive; the untouched source stays cached.
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg/a.cc"), []byte("int a(){return 1;}"), 0o644))
	build()
	assert.Equal(t, 2, runs["many#pkg/a.cc"])
	assert.Equal(t, 1, runs["many#pkg/b.cc"])
	assert.Equal(t, 2, runs["many"])
}

func TestApp_Plan_LoaderErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loadErr := errors.New("workspace file unreadable")
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).Return(nil, loadErr)

	a := newTestApp(ctrl, loader, mocks.NewMockExecutor(ctrl))

	_, err := a.Plan(t.TempDir())
	assert.ErrorIs(t, err, loadErr)
}
