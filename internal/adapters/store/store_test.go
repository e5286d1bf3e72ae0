package store_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/warm/internal/adapters/store"
	"go.trai.ch/warm/internal/core/domain"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return s
}

func planFor(t *testing.T, name, path, fp, stamp string) domain.KeyPlan {
	t.Helper()
	plan, err := domain.PlanKeys(
		domain.CacheClass{Name: name, Path: path},
		domain.Fingerprint(fp),
		domain.DateStamp(stamp),
	)
	require.NoError(t, err)
	return plan
}

func seedClassDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "class")
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestStore_SaveAndRestoreExact(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	dir := seedClassDir(t, map[string]string{
		"pkg/serde-1.0.0.crate": "crate bytes",
		"config.toml":           "offline = true",
	})
	plan := planFor(t, "registry", dir, "f1", "2024-01-01")

	require.NoError(t, s.Save(ctx, plan))
	assert.True(t, s.Has(plan.ExactKey))

	// Wipe the class dir and restore it from the store.
	require.NoError(t, os.RemoveAll(dir))
	result, err := s.Restore(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, domain.RestoreExact, result.Outcome)
	assert.Equal(t, plan.ExactKey, result.MatchedKey)

	data, err := os.ReadFile(filepath.Join(dir, "pkg", "serde-1.0.0.crate"))
	require.NoError(t, err)
	assert.Equal(t, "crate bytes", string(data))
}

func TestStore_RestoreMiss(t *testing.T) {
	s := newTestStore(t)
	plan := planFor(t, "registry", t.TempDir(), "f1", "2024-01-01")

	result, err := s.Restore(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, domain.RestoreMiss, result.Outcome)
	assert.Empty(t, result.MatchedKey)
}

func TestStore_PrefixFallbackAcrossDays(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	dir := seedClassDir(t, map[string]string{"index": "day one"})
	day1 := planFor(t, "registry", dir, "f1", "2024-01-01")
	require.NoError(t, s.Save(ctx, day1))

	// Next day, same fingerprint: exact key misses, the date-free prefix
	// finds yesterday's entry.
	day2 := planFor(t, "registry", dir, "f1", "2024-01-02")
	require.NoError(t, os.RemoveAll(dir))

	result, err := s.Restore(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, domain.RestorePrefix, result.Outcome)
	assert.Equal(t, day1.ExactKey, result.MatchedKey)

	data, err := os.ReadFile(filepath.Join(dir, "index"))
	require.NoError(t, err)
	assert.Equal(t, "day one", string(data))
}

func TestStore_PrefixFallbackPicksNewest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	dir := seedClassDir(t, map[string]string{"index": "day one"})
	require.NoError(t, s.Save(ctx, planFor(t, "registry", dir, "f1", "2024-01-01")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte("day two"), 0o600))
	day2 := planFor(t, "registry", dir, "f1", "2024-01-02")
	require.NoError(t, s.Save(ctx, day2))

	day3 := planFor(t, "registry", dir, "f1", "2024-01-03")
	require.NoError(t, os.RemoveAll(dir))

	result, err := s.Restore(ctx, day3)
	require.NoError(t, err)
	assert.Equal(t, domain.RestorePrefix, result.Outcome)
	assert.Equal(t, day2.ExactKey, result.MatchedKey)

	data, err := os.ReadFile(filepath.Join(dir, "index"))
	require.NoError(t, err)
	assert.Equal(t, "day two", string(data))
}

func TestStore_FingerprintChangeIsFullMiss(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	dir := seedClassDir(t, map[string]string{"index": "old deps"})
	require.NoError(t, s.Save(ctx, planFor(t, "registry", dir, "f1", "2024-01-01")))

	// Changed manifest on the next day: neither the exact key nor the
	// restore prefix can match the old entry.
	changed := planFor(t, "registry", dir, "f2", "2024-01-02")
	result, err := s.Restore(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, domain.RestoreMiss, result.Outcome)
}

func TestStore_SaveExistingKeyIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	dir := seedClassDir(t, map[string]string{"index": "first"})
	plan := planFor(t, "registry", dir, "f1", "2024-01-01")
	require.NoError(t, s.Save(ctx, plan))

	// A second save the same day must not overwrite the stored entry.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte("second"), 0o600))
	require.NoError(t, s.Save(ctx, plan))

	require.NoError(t, os.RemoveAll(dir))
	_, err := s.Restore(ctx, plan)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "index"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestStore_ClassesAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	registryDir := seedClassDir(t, map[string]string{"data": "registry"})
	indexDir := seedClassDir(t, map[string]string{"data": "index"})

	registry := planFor(t, "registry", registryDir, "f1", "2024-01-01")
	index := planFor(t, "index", indexDir, "f1", "2024-01-01")
	assert.NotEqual(t, registry.ExactKey, index.ExactKey)

	require.NoError(t, s.Save(ctx, registry))

	// Only registry was saved: the index class must miss even though the
	// fingerprint and date are identical.
	result, err := s.Restore(ctx, index)
	require.NoError(t, err)
	assert.Equal(t, domain.RestoreMiss, result.Outcome)
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	storeDir := filepath.Join(t.TempDir(), "cache")

	s1, err := store.NewStore(storeDir)
	require.NoError(t, err)

	dir := seedClassDir(t, map[string]string{"index": "persisted"})
	plan := planFor(t, "registry", dir, "f1", "2024-01-01")
	require.NoError(t, s1.Save(ctx, plan))

	s2, err := store.NewStore(storeDir)
	require.NoError(t, err)
	assert.True(t, s2.Has(plan.ExactKey))

	require.NoError(t, os.RemoveAll(dir))
	result, err := s2.Restore(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, domain.RestoreExact, result.Outcome)
}

func TestStore_ConcurrentSavesPersistAllEntries(t *testing.T) {
	ctx := context.Background()
	storeDir := filepath.Join(t.TempDir(), "cache")

	s1, err := store.NewStore(storeDir)
	require.NoError(t, err)

	// The runner saves all classes concurrently; every entry must survive
	// into the persisted index, not just the last snapshot to be written.
	const classes = 8
	plans := make([]domain.KeyPlan, classes)
	for i := range plans {
		dir := seedClassDir(t, map[string]string{"data": fmt.Sprintf("class %d", i)})
		plans[i] = planFor(t, fmt.Sprintf("c%d", i), dir, "f1", "2024-01-01")
	}

	var wg sync.WaitGroup
	errs := make([]error, classes)
	for i, plan := range plans {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s1.Save(ctx, plan)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "save of class c%d", i)
	}

	s2, err := store.NewStore(storeDir)
	require.NoError(t, err)
	for _, plan := range plans {
		assert.True(t, s2.Has(plan.ExactKey), "key %s lost from persisted index", plan.ExactKey)
	}
}

func TestStore_CorruptEntryEvictedAndRepaired(t *testing.T) {
	ctx := context.Background()
	storeDir := filepath.Join(t.TempDir(), "cache")

	s, err := store.NewStore(storeDir)
	require.NoError(t, err)

	dir := seedClassDir(t, map[string]string{"index": "good"})
	plan := planFor(t, "registry", dir, "f1", "2024-01-01")
	require.NoError(t, s.Save(ctx, plan))

	// Clobber the stored archive, then fail the restore.
	objectPath := filepath.Join(storeDir, "objects", plan.ExactKey.String()+".tar.zst")
	require.NoError(t, os.WriteFile(objectPath, []byte("not an archive"), 0o600))

	_, err = s.Restore(ctx, plan)
	require.Error(t, err)

	// The broken entry is evicted, so the same day's save can repair it
	// instead of treating the key as already present.
	assert.False(t, s.Has(plan.ExactKey))
	require.NoError(t, s.Save(ctx, plan))

	require.NoError(t, os.RemoveAll(dir))
	result, err := s.Restore(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, domain.RestoreExact, result.Outcome)

	data, err := os.ReadFile(filepath.Join(dir, "index"))
	require.NoError(t, err)
	assert.Equal(t, "good", string(data))
}

func TestStore_SaveMissingClassPath(t *testing.T) {
	s := newTestStore(t)
	plan := planFor(t, "registry", filepath.Join(t.TempDir(), "does-not-exist"), "f1", "2024-01-01")

	err := s.Save(context.Background(), plan)
	require.Error(t, err)
	assert.False(t, s.Has(plan.ExactKey))
}

func TestStore_EmptyDirErrors(t *testing.T) {
	_, err := store.NewStore("")
	require.Error(t, err)
}
