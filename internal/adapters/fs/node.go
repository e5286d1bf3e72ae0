package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/warm/internal/core/ports"
)

// FingerprinterNodeID is the unique identifier for the fingerprinter node.
const FingerprinterNodeID graft.ID = "adapter.fs.fingerprinter"

func init() {
	graft.Register(graft.Node[ports.Fingerprinter]{
		ID:        FingerprinterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Fingerprinter, error) {
			return NewFingerprinter(), nil
		},
	})
}
