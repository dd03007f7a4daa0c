package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/SkeneZr/cc-rules/internal/adapters/telemetry"
	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports/mocks"
	"github.com/SkeneZr/cc-rules/internal/engine/scheduler"
)

func addUnit(t *testing.T, g *domain.Graph, name string) *domain.Unit {
	t.Helper()
	u := &domain.Unit{
		Name: domain.NewInternedString(name),
		Kind: domain.KindLibrary,
	}
	if err := g.AddUnit(u); err != nil {
		t.Fatalf("AddUnit(%s) failed: %v", name, err)
	}
	return u
}

func addStep(t *testing.T, g *domain.Graph, unit string, id string, deps ...string) *domain.Step {
	t.Helper()
	s := &domain.Step{
		ID:   domain.NewInternedString(id),
		Unit: domain.NewInternedString(unit),
		Kind: domain.StepCompile,
	}
	for _, d := range deps {
		s.Dependencies = append(s.Dependencies, domain.NewInternedString(d))
	}
	for _, p := range domain.Profiles() {
		s.Commands.Set(p, "true")
	}
	if err := g.AddStep(s); err != nil {
		t.Fatalf("AddStep(%s) failed: %v", id, err)
	}
	return s
}

// passthroughMocks wires a rewriter that always succeeds, a hasher with a
// constant fingerprint, a verifier that always finds the artifact, and an
// empty store.
func passthroughMocks(ctrl *gomock.Controller) (*mocks.MockRewriter, *mocks.MockHasher, *mocks.MockVerifier, *mocks.MockStepResultStore) {
	rewriter := mocks.NewMockRewriter(ctrl)
	rewriter.EXPECT().Rewrite(gomock.Any()).Return(nil).AnyTimes()

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Fingerprint(gomock.Any(), gomock.Any(), gomock.Any()).Return("fp", nil).AnyTimes()

	verifier := mocks.NewMockVerifier(ctrl)
	verifier.EXPECT().VerifyOutput(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	store := mocks.NewMockStepResultStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()

	return rewriter, hasher, verifier, store
}

func TestScheduler_Run_Diamond(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// Step graph: A depends on B and C, B and C each depend on D.
		g := domain.NewGraph()
		addUnit(t, g, "A")
		addUnit(t, g, "B")
		addUnit(t, g, "C")
		addUnit(t, g, "D")
		addStep(t, g, "D", "D")
		addStep(t, g, "B", "B", "D")
		addStep(t, g, "C", "C", "D")
		addStep(t, g, "A", "A", "B", "C")

		dStarted := make(chan struct{})
		dProceed := make(chan struct{})
		bStarted := make(chan struct{})
		bProceed := make(chan struct{})
		cStarted := make(chan struct{})
		cProceed := make(chan struct{})

		mockExec := mocks.NewMockExecutor(ctrl)
		mockExec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, step *domain.Step, _ domain.Profile) error {
				switch step.ID.String() {
				case "D":
					close(dStarted)
					<-dProceed
					return nil
				case "B":
					close(bStarted)
					<-bProceed
					return errors.New("B failed")
				case "C":
					close(cStarted)
					<-cProceed
					return nil
				case "A":
					t.Error("step A should not be executed after B failed")
					return nil
				default:
					t.Errorf("unexpected step: %s", step.ID)
					return nil
				}
			}).AnyTimes()

		rewriter, hasher, verifier, store := passthroughMocks(ctrl)
		s, err := scheduler.NewScheduler(
			g, domain.ProfileDbg, t.TempDir(),
			rewriter, mockExec, hasher, verifier, store, telemetry.NewNoOpTracer(),
		)
		if err != nil {
			t.Fatalf("NewScheduler failed: %v", err)
		}

		errCh := make(chan error)
		go func() {
			errCh <- s.Run(context.Background(), 2)
		}()

		synctest.Wait()
		select {
		case <-dStarted:
		default:
			t.Fatal("D did not start")
		}
		close(dProceed)

		synctest.Wait()
		<-bStarted
		<-cStarted
		close(bProceed)
		close(cProceed)

		err = <-errCh
		if err == nil {
			t.Fatal("expected error from Run, got nil")
		}

		statuses := s.GetStepStatusMap()
		want := map[string]scheduler.StepStatus{
			"D": scheduler.StatusCompleted,
			"B": scheduler.StatusFailed,
			"C": scheduler.StatusCompleted,
			"A": scheduler.StatusPending,
		}
		for id, status := range want {
			if got := statuses[domain.NewInternedString(id)]; got != status {
				t.Errorf("step %s: status = %s, want %s", id, got, status)
			}
		}
	})
}

func TestScheduler_Run_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := domain.NewGraph()
	addUnit(t, g, "lib")
	addStep(t, g, "lib", "lib#a.cc")

	rewriter := mocks.NewMockRewriter(ctrl)
	rewriter.EXPECT().Rewrite(gomock.Any()).Return(nil).Times(1)

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Fingerprint(gomock.Any(), domain.ProfileDbg, gomock.Any()).Return("fp-1", nil)

	key := domain.StepResult{StepID: "lib#a.cc", Profile: domain.ProfileDbg}.Key()
	store := mocks.NewMockStepResultStore(ctrl)
	store.EXPECT().Get(key).Return(&domain.StepResult{
		StepID:      "lib#a.cc",
		Profile:     domain.ProfileDbg,
		Fingerprint: "fp-1",
		Timestamp:   time.Now(),
	}, nil)

	// Artifact still present, so the matching fingerprint counts as a hit.
	verifier := mocks.NewMockVerifier(ctrl)
	verifier.EXPECT().VerifyOutput(gomock.Any(), gomock.Any(), domain.ProfileDbg).Return(true, nil)

	// No Execute and no Put expectations: a cache hit must touch neither.
	executor := mocks.NewMockExecutor(ctrl)

	s, err := scheduler.NewScheduler(
		g, domain.ProfileDbg, t.TempDir(),
		rewriter, executor, hasher, verifier, store, telemetry.NewNoOpTracer(),
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	if err := s.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := s.GetStepStatusMap()[domain.NewInternedString("lib#a.cc")]
	if got != scheduler.StatusCached {
		t.Errorf("status = %s, want %s", got, scheduler.StatusCached)
	}
}

func TestScheduler_Run_StaleFingerprintReexecutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := domain.NewGraph()
	addUnit(t, g, "lib")
	addStep(t, g, "lib", "lib#a.cc")

	rewriter, _, verifier, _ := passthroughMocks(ctrl)

	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Fingerprint(gomock.Any(), gomock.Any(), gomock.Any()).Return("fp-new", nil)

	store := mocks.NewMockStepResultStore(ctrl)
	store.EXPECT().Get(gomock.Any()).Return(&domain.StepResult{
		StepID:      "lib#a.cc",
		Profile:     domain.ProfileDbg,
		Fingerprint: "fp-old",
	}, nil)
	store.EXPECT().Put(gomock.Any()).DoAndReturn(func(res domain.StepResult) error {
		if res.Fingerprint != "fp-new" {
			t.Errorf("stored fingerprint = %s, want fp-new", res.Fingerprint)
		}
		return nil
	})

	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

	s, err := scheduler.NewScheduler(
		g, domain.ProfileDbg, t.TempDir(),
		rewriter, executor, hasher, verifier, store, telemetry.NewNoOpTracer(),
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	if err := s.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := s.GetStepStatusMap()[domain.NewInternedString("lib#a.cc")]
	if got != scheduler.StatusCompleted {
		t.Errorf("status = %s, want %s", got, scheduler.StatusCompleted)
	}
}

func TestScheduler_Run_RewritesUnitOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// One unit lowered to three steps: two compiles plus a combine.
	g := domain.NewGraph()
	u := addUnit(t, g, "lib")
	addStep(t, g, "lib", "lib#a.cc")
	addStep(t, g, "lib", "lib#b.cc")
	addStep(t, g, "lib", "lib#combine", "lib#a.cc", "lib#b.cc")

	rewriter := mocks.NewMockRewriter(ctrl)
	rewriter.EXPECT().Rewrite(u).Return(nil).Times(1)

	_, hasher, verifier, store := passthroughMocks(ctrl)
	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(3)

	s, err := scheduler.NewScheduler(
		g, domain.ProfileDbg, t.TempDir(),
		rewriter, executor, hasher, verifier, store, telemetry.NewNoOpTracer(),
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	if err := s.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestScheduler_Run_MissingOutputFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := domain.NewGraph()
	addUnit(t, g, "lib")
	addStep(t, g, "lib", "lib#a.cc")

	rewriter, hasher, _, store := passthroughMocks(ctrl)

	executor := mocks.NewMockExecutor(ctrl)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	// The command exits zero but never writes its declared artifact.
	verifier := mocks.NewMockVerifier(ctrl)
	verifier.EXPECT().VerifyOutput(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	s, err := scheduler.NewScheduler(
		g, domain.ProfileDbg, t.TempDir(),
		rewriter, executor, hasher, verifier, store, telemetry.NewNoOpTracer(),
	)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	err = s.Run(context.Background(), 1)
	if !errors.Is(err, domain.ErrBuildExecutionFailed) {
		t.Fatalf("Run error = %v, want ErrBuildExecutionFailed", err)
	}
}

func TestScheduler_Run_InvalidGraphRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := domain.NewGraph()
	addUnit(t, g, "lib")
	addStep(t, g, "lib", "lib#a.cc", "ghost")

	rewriter, hasher, verifier, store := passthroughMocks(ctrl)
	executor := mocks.NewMockExecutor(ctrl)

	_, err := scheduler.NewScheduler(
		g, domain.ProfileDbg, t.TempDir(),
		rewriter, executor, hasher, verifier, store, telemetry.NewNoOpTracer(),
	)
	if !errors.Is(err, domain.ErrMissingDependency) {
		t.Fatalf("NewScheduler error = %v, want ErrMissingDependency", err)
	}
}
