// Package app implements the application layer for ccrules.
package app

import (
	"context"
	"errors"
	"runtime"

	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
	"github.com/SkeneZr/cc-rules/internal/engine/scheduler"
	"github.com/SkeneZr/cc-rules/internal/platform"
	"github.com/SkeneZr/cc-rules/internal/rules/archive"
	"github.com/SkeneZr/cc-rules/internal/rules/ccmodule"
	"github.com/SkeneZr/cc-rules/internal/rules/propagate"
	"github.com/SkeneZr/cc-rules/internal/rules/synth"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	hasher       ports.Hasher
	verifier     ports.Verifier
	store        ports.StepResultStore
	tracer       ports.Tracer
	policy       platform.Policy
	toolchain    domain.Toolchain
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	hasher ports.Hasher,
	verifier ports.Verifier,
	store ports.StepResultStore,
	tracer ports.Tracer,
	policy platform.Policy,
	toolchain domain.Toolchain,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		hasher:       hasher,
		verifier:     verifier,
		store:        store,
		tracer:       tracer,
		policy:       policy,
		toolchain:    toolchain,
	}
}

// Plan is a loaded, lowered and validated build description together with
// the propagation engine bound to it.
type Plan struct {
	Graph  *domain.Graph
	Engine *propagate.Engine
}

// RewriteAll runs the deferred rewrite for every declared unit. After it
// returns, every step command reflects the unit's full transitive label
// closure.
func (p *Plan) RewriteAll() error {
	for unit := range p.Graph.Units() {
		if err := p.Engine.Rewrite(unit); err != nil {
			return err
		}
	}
	return nil
}

// Plan loads the build description from cwd, lowers the declared units into
// steps with baseline commands and validates the resulting graph.
func (a *App) Plan(cwd string) (*Plan, error) {
	graph, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	engine := propagate.NewEngine(
		synth.New(a.toolchain, a.policy),
		archive.New(a.toolchain),
		ccmodule.New(),
		graph,
	)
	if err := engine.Plan(); err != nil {
		return nil, err
	}

	return &Plan{Graph: graph, Engine: engine}, nil
}

// Build plans the graph in cwd and executes the steps reachable from the
// given targets for one profile. Parallelism <= 0 means one worker per CPU.
func (a *App) Build(
	ctx context.Context,
	cwd string,
	profile domain.Profile,
	targetNames []string,
	parallelism int,
) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	plan, err := a.Plan(cwd)
	if err != nil {
		return err
	}

	targets := make([]domain.InternedString, 0, len(targetNames))
	for _, name := range targetNames {
		targets = append(targets, domain.NewInternedString(name))
	}
	run, err := plan.Graph.Subgraph(targets)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(
		run,
		profile,
		cwd,
		plan.Engine,
		a.executor,
		a.hasher,
		a.verifier,
		a.store,
		a.tracer,
	)
	if err != nil {
		return err
	}

	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if err := sched.Run(ctx, parallelism); err != nil {
		// Step failures were already reported while streaming; the sentinel
		// lets the CLI exit non-zero without printing them twice.
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}

	return nil
}
