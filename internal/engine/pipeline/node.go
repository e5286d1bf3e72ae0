package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/warm/internal/adapters/fs"                  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/warm/internal/adapters/logger"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/warm/internal/adapters/shell"               //nolint:depguard // Wired in engine wiring
	"go.trai.ch/warm/internal/adapters/store"               //nolint:depguard // Wired in engine wiring
	"go.trai.ch/warm/internal/adapters/telemetry/progrock"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/warm/internal/engine/planner"
)

// NodeID is the unique identifier for the pipeline runner Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			planner.NodeID,
			fs.FingerprinterNodeID,
			store.NodeID,
			shell.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			plan, err := graft.Dep[*planner.Planner](ctx)
			if err != nil {
				return nil, err
			}
			fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}
			cacheStore, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(plan, fingerprinter, cacheStore, executor, telemetry, log), nil
		},
	})
}
