// Package scheduler implements the build step execution scheduler.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

// StepStatus represents the status of a build step.
type StepStatus string

const (
	// StatusPending indicates the step is waiting to be executed.
	StatusPending StepStatus = "Pending"
	// StatusRunning indicates the step is currently executing.
	StatusRunning StepStatus = "Running"
	// StatusCompleted indicates the step has finished successfully.
	StatusCompleted StepStatus = "Completed"
	// StatusFailed indicates the step execution failed.
	StatusFailed StepStatus = "Failed"
	// StatusCached indicates the step was skipped because its fingerprint
	// was unchanged.
	StatusCached StepStatus = "Cached"
)

// Scheduler executes the steps of a validated graph for a single profile.
// Before the first step of a unit runs, the unit's commands are rewritten
// from its transitive label closure; by that point every dependency the
// closure draws from is fully declared.
type Scheduler struct {
	graph    *domain.Graph
	profile  domain.Profile
	root     string
	rewriter ports.Rewriter
	executor ports.Executor
	hasher   ports.Hasher
	verifier ports.Verifier
	store    ports.StepResultStore
	tracer   ports.Tracer

	mu         sync.RWMutex
	stepStatus map[domain.InternedString]StepStatus
	rewritten  map[domain.InternedString]bool
}

// NewScheduler creates a Scheduler for the given graph and profile. It
// validates the graph before proceeding and returns an error if validation
// fails.
func NewScheduler(
	graph *domain.Graph,
	profile domain.Profile,
	root string,
	rewriter ports.Rewriter,
	executor ports.Executor,
	hasher ports.Hasher,
	verifier ports.Verifier,
	store ports.StepResultStore,
	tracer ports.Tracer,
) (*Scheduler, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		graph:      graph,
		profile:    profile,
		root:       root,
		rewriter:   rewriter,
		executor:   executor,
		hasher:     hasher,
		verifier:   verifier,
		store:      store,
		tracer:     tracer,
		stepStatus: make(map[domain.InternedString]StepStatus),
		rewritten:  make(map[domain.InternedString]bool),
	}
	s.initStepStatuses()
	return s, nil
}

func (s *Scheduler) initStepStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for step := range s.graph.Walk() {
		s.stepStatus[step.ID] = StatusPending
	}
}

func (s *Scheduler) updateStatus(id domain.InternedString, status StepStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepStatus[id] = status
}

func (s *Scheduler) getStatus(id domain.InternedString) StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepStatus[id]
}

// rewriteUnit runs the deferred rewrite for the step's owning unit exactly
// once, no matter how many steps the unit lowered to.
func (s *Scheduler) rewriteUnit(name domain.InternedString) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rewritten[name] {
		return nil
	}
	unit, ok := s.graph.Unit(name)
	if !ok {
		return zerr.With(domain.ErrUnitNotFound, "unit", name.String())
	}
	if err := s.rewriter.Rewrite(unit); err != nil {
		return err
	}
	s.rewritten[name] = true
	return nil
}

// Run executes the graph's steps with the specified parallelism.
func (s *Scheduler) Run(ctx context.Context, parallelism int) error {
	state := s.newRunState(ctx, parallelism)

	stepIDs := make([]string, 0, s.graph.StepCount())
	for step := range s.graph.Walk() {
		stepIDs = append(stepIDs, step.ID.String())
	}
	s.tracer.EmitPlan(ctx, stepIDs)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

type result struct {
	step domain.InternedString
	err  error
}

type schedulerRunState struct {
	inDegree    map[domain.InternedString]int
	steps       map[domain.InternedString]*domain.Step
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, parallelism int) *schedulerRunState {
	stepCount := s.graph.StepCount()
	inDegree := make(map[domain.InternedString]int, stepCount)
	steps := make(map[domain.InternedString]*domain.Step, stepCount)

	for step := range s.graph.Walk() {
		steps[step.ID] = step
		inDegree[step.ID] = len(step.Dependencies)
	}

	var ready []domain.InternedString
	for step := range s.graph.Walk() {
		if inDegree[step.ID] == 0 {
			ready = append(ready, step.ID)
		}
	}

	return &schedulerRunState{
		inDegree:    inDegree,
		steps:       steps,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		s:           s,
	}
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		stepID := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(stepID, StatusRunning)

		go func(step *domain.Step) {
			state.resultsCh <- result{step: step.ID, err: state.executeStepWithCache(state.ctx, step)}
		}(state.steps[stepID])
	}
}

func (state *schedulerRunState) executeStepWithCache(ctx context.Context, step *domain.Step) error {
	// The rewrite must land before fingerprinting: the closure changes the
	// command, and the command is part of the fingerprint.
	if err := state.s.rewriteUnit(step.Unit); err != nil {
		return err
	}

	fingerprint, err := state.s.hasher.Fingerprint(step, state.s.profile, state.s.root)
	if err != nil {
		return err
	}

	if state.checkCacheHit(ctx, step, fingerprint) {
		return nil
	}

	ctx, span := state.s.tracer.Start(ctx, step.ID.String())
	span.SetAttribute("profile", string(state.s.profile))
	if err := state.executeAndVerify(ctx, step); err != nil {
		span.RecordError(err)
		span.End()
		return err
	}
	span.End()

	return state.recordResult(step, fingerprint)
}

func (state *schedulerRunState) executeAndVerify(ctx context.Context, step *domain.Step) error {
	if err := state.s.executor.Execute(ctx, step, state.s.profile); err != nil {
		return err
	}

	ok, err := state.s.verifier.VerifyOutput(state.s.root, step, state.s.profile)
	if err != nil {
		return err
	}
	if !ok {
		return zerr.With(
			zerr.With(domain.ErrBuildExecutionFailed, "step", step.ID.String()),
			"reason", "declared output missing after execution",
		)
	}
	return nil
}

func (state *schedulerRunState) checkCacheHit(ctx context.Context, step *domain.Step, fingerprint string) bool {
	key := domain.StepResult{StepID: step.ID.String(), Profile: state.s.profile}.Key()
	prior, err := state.s.store.Get(key)
	if err != nil || prior == nil || prior.Fingerprint != fingerprint {
		return false
	}

	// A matching fingerprint is only a hit while the artifact still exists.
	present, err := state.s.verifier.VerifyOutput(state.s.root, step, state.s.profile)
	if err != nil || !present {
		return false
	}

	state.s.updateStatus(step.ID, StatusCached)
	_, span := state.s.tracer.Start(ctx, step.ID.String(), ports.WithCached())
	span.End()
	return true
}

func (state *schedulerRunState) recordResult(step *domain.Step, fingerprint string) error {
	newResult := domain.StepResult{
		StepID:      step.ID.String(),
		Profile:     state.s.profile,
		Fingerprint: fingerprint,
		Timestamp:   time.Now(),
	}

	if err := state.s.store.Put(newResult); err != nil {
		return zerr.Wrap(err, "failed to store step result")
	}

	return nil
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--
	if res.err != nil {
		wrappedErr := zerr.With(zerr.Wrap(res.err, "step execution failed"), "step", res.step.String())
		state.errs = errors.Join(state.errs, wrappedErr)
		state.s.updateStatus(res.step, StatusFailed)
	} else {
		// Cached steps keep their Cached status.
		if state.s.getStatus(res.step) != StatusCached {
			state.s.updateStatus(res.step, StatusCompleted)
		}
		for _, dep := range state.s.graph.Dependents(res.step) {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}
