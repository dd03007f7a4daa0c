package platform

import (
	"context"
	"runtime"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the platform policy Graft node.
const NodeID graft.ID = "platform.policy"

func init() {
	graft.Register(graft.Node[Policy]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (Policy, error) {
			return ForOS(runtime.GOOS), nil
		},
	})
}
