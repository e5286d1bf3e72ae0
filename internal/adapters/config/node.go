package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/warm/internal/core/ports"
)

// NodeID is the unique identifier for the config loader node.
const NodeID graft.ID = "adapter.config"

// DefaultFilename is the configuration file warm looks for.
const DefaultFilename = "warm.yaml"

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ConfigLoader, error) {
			return &FileConfigLoader{Filename: DefaultFilename}, nil
		},
	})
}
