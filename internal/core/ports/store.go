package ports

import (
	"context"

	"go.trai.ch/warm/internal/core/domain"
)

// CacheStore persists and restores cache entries for key plans.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Restore looks up the plan's exact key first and then each restore-chain
	// prefix in order, extracting the best match into the class path. A miss
	// is not an error: it returns a result with domain.RestoreMiss. Errors
	// indicate the store itself is unavailable or an entry is corrupt.
	Restore(ctx context.Context, plan domain.KeyPlan) (domain.RestoreResult, error)

	// Save persists the class path under the plan's exact key. Saving a key
	// that already exists is a no-op.
	Save(ctx context.Context, plan domain.KeyPlan) error

	// Has reports whether an entry exists under the exact key.
	Has(key domain.CacheKey) bool
}
