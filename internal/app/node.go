package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/SkeneZr/cc-rules/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"github.com/SkeneZr/cc-rules/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"github.com/SkeneZr/cc-rules/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"github.com/SkeneZr/cc-rules/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"github.com/SkeneZr/cc-rules/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"github.com/SkeneZr/cc-rules/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
	"github.com/SkeneZr/cc-rules/internal/platform"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			config.ToolchainNodeID,
			shell.NodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
			platform.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	verifier, err := graft.Dep[ports.Verifier](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.StepResultStore](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	policy, err := graft.Dep[platform.Policy](ctx)
	if err != nil {
		return nil, err
	}

	toolchain, err := graft.Dep[domain.Toolchain](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, hasher, verifier, store, tracer, policy, toolchain), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return NewComponents(app, log, tracer), nil
}
