package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"

	"github.com/SkeneZr/cc-rules/internal/adapters/logger"
	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

// NodeID is the unique identifier for the config loader Graft node.
const NodeID graft.ID = "adapter.config_loader"

// ToolchainNodeID is the unique identifier for the toolchain Graft node.
const ToolchainNodeID graft.ID = "adapter.toolchain"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ConfigLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	graft.Register(graft.Node[domain.Toolchain]{
		ID:        ToolchainNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (domain.Toolchain, error) {
			return ToolchainFromEnv(), nil
		},
	})
}

// ToolchainFromEnv builds the toolchain configuration from defaults plus the
// conventional override variables. The result is immutable and threaded
// explicitly through command synthesis.
func ToolchainFromEnv() domain.Toolchain {
	tc := domain.DefaultToolchain()
	if cc := os.Getenv("CC"); cc != "" {
		tc.CC = cc
	}
	if cxx := os.Getenv("CXX"); cxx != "" {
		tc.CXX = cxx
	}
	if ar := os.Getenv("AR"); ar != "" {
		tc.AR = ar
	}
	if pc := os.Getenv("PKG_CONFIG"); pc != "" {
		tc.PkgConfig = pc
	}
	if os.Getenv("CC_COVERAGE") != "" {
		tc.CoverageEnabled = true
	}
	return tc
}
