package store

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/warm/internal/core/ports"
)

// NodeID is the unique identifier for the cache store node.
const NodeID graft.ID = "adapter.store"

// defaultDir is where the store lives unless WARM_CACHE_DIR overrides it.
const defaultDir = ".warm/cache"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CacheStore, error) {
			dir := os.Getenv("WARM_CACHE_DIR")
			if dir == "" {
				dir = defaultDir
			}
			return NewStore(dir)
		},
	})
}
