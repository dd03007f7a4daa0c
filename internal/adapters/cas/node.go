package cas

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

// NodeID is the unique identifier for the step result store Graft node.
const NodeID graft.ID = "adapter.step_result_store"

func init() {
	graft.Register(graft.Node[ports.StepResultStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StepResultStore, error) {
			return NewStore(DefaultPath)
		},
	})
}
