// Package store implements the disk-backed cache store: a flat JSON index
// plus one compressed tar archive per cache key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

const (
	indexFile  = "index.json"
	objectsDir = "objects"
	entryExt   = ".tar.zst"
)

// Entry records one saved cache key in the index.
type Entry struct {
	Key       string    `json:"key"`
	Class     string    `json:"class"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size,omitzero"`
}

// Store implements ports.CacheStore on the local filesystem.
type Store struct {
	dir   string
	mu    sync.RWMutex
	index map[string]Entry
}

// NewStore opens (or initializes) a cache store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, zerr.New("cache store dir is empty")
	}

	s := &Store{
		dir:   filepath.Clean(dir),
		index: make(map[string]Entry),
	}
	if err := os.MkdirAll(filepath.Join(s.dir, objectsDir), 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create cache store directory")
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, indexFile)) //nolint:gosec // Path is cleaned and provided by trusted caller
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read cache index")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.index); err != nil {
		return zerr.Wrap(err, "failed to unmarshal cache index")
	}
	return nil
}

// putEntry inserts the entry and persists the index in one critical
// section. Concurrent saves serialize here: marshal and rename happen
// under the write lock, so a slower save can never rename an older
// snapshot over a newer one and drop the other entry from disk.
func (s *Store) putEntry(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index[e.Key] = e

	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache index")
	}
	return s.writeIndex(data)
}

// writeIndex writes the index atomically: temp file in the store dir, then
// rename over index.json. Callers hold s.mu.
func (s *Store) writeIndex(data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "index-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp index")
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return zerr.Wrap(err, "failed to write temp index")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.Wrap(err, "failed to close temp index")
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, indexFile)); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.Wrap(err, "failed to replace cache index")
	}
	return nil
}

// Has reports whether an entry exists under the exact key.
func (s *Store) Has(key domain.CacheKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[key.String()]
	return ok
}

// Restore looks up the plan's exact key, then each restore-chain prefix in
// order, and extracts the best match into the class path. Stored keys are
// eligible for a prefix entry when they continue it at a "-" boundary; the
// newest such entry wins, which for date-suffixed keys is the most recent
// day. A miss is reported in the result, not as an error.
func (s *Store) Restore(ctx context.Context, plan domain.KeyPlan) (domain.RestoreResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RestoreResult{Outcome: domain.RestoreMiss}, err
	}

	if s.Has(plan.ExactKey) {
		if err := s.extract(plan.ExactKey, plan.Class.Path); err != nil {
			s.evict(plan.ExactKey)
			return domain.RestoreResult{Outcome: domain.RestoreMiss}, err
		}
		return domain.RestoreResult{
			Outcome:    domain.RestoreExact,
			MatchedKey: plan.ExactKey,
		}, nil
	}

	for _, prefix := range plan.RestoreKeys {
		match, ok := s.newestWithPrefix(prefix)
		if !ok {
			continue
		}
		if err := s.extract(domain.CacheKey(match.Key), plan.Class.Path); err != nil {
			s.evict(domain.CacheKey(match.Key))
			return domain.RestoreResult{Outcome: domain.RestoreMiss}, err
		}
		return domain.RestoreResult{
			Outcome:    domain.RestorePrefix,
			MatchedKey: domain.CacheKey(match.Key),
		}, nil
	}

	return domain.RestoreResult{Outcome: domain.RestoreMiss}, nil
}

func (s *Store) newestWithPrefix(prefix string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Entry
	var found bool
	for key, e := range s.index {
		if !strings.HasPrefix(key, prefix+"-") {
			continue
		}
		// Ties on CreatedAt break by key; date-suffixed keys sort by day.
		if !found || e.CreatedAt.After(best.CreatedAt) ||
			(e.CreatedAt.Equal(best.CreatedAt) && e.Key > best.Key) {
			best = e
			found = true
		}
	}
	return best, found
}

// Save persists the class path under the plan's exact key. Saving a key
// that already exists is a no-op: the entry was written earlier the same
// day for the same fingerprint.
func (s *Store) Save(ctx context.Context, plan domain.KeyPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Has(plan.ExactKey) {
		return nil
	}

	src := plan.Class.Path
	if _, err := os.Stat(src); err != nil {
		return zerr.With(zerr.Wrap(err, "cache path not found"), "class", plan.Class.Name)
	}

	size, err := s.writeObject(plan.ExactKey, src)
	if err != nil {
		return err
	}

	return s.putEntry(Entry{
		Key:       plan.ExactKey.String(),
		Class:     plan.Class.Name,
		CreatedAt: time.Now(),
		Size:      size,
	})
}

// writeObject archives src into objects/<key>.tar.zst via a temp file and
// rename, so a crashed save never leaves a half-written entry behind.
func (s *Store) writeObject(key domain.CacheKey, src string) (int64, error) {
	dir := filepath.Join(s.dir, objectsDir)

	tmp, err := os.CreateTemp(dir, "entry-*")
	if err != nil {
		return 0, zerr.Wrap(err, "failed to create temp cache entry")
	}
	tmpPath := tmp.Name()

	if err := pack(src, tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, zerr.With(err, "key", key.String())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, zerr.Wrap(err, "failed to close temp cache entry")
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, zerr.Wrap(err, "failed to stat temp cache entry")
	}

	if err := os.Rename(tmpPath, s.objectPath(key)); err != nil {
		_ = os.Remove(tmpPath)
		return 0, zerr.Wrap(err, "failed to commit cache entry")
	}
	return info.Size(), nil
}

// evict drops a corrupt entry and its archive so Has stops reporting the
// key and a later save can write a fresh one. Best effort: the caller is
// already surfacing the extraction error.
func (s *Store) evict(key domain.CacheKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.index, key.String())
	_ = os.Remove(s.objectPath(key))
	if data, err := json.MarshalIndent(s.index, "", "  "); err == nil {
		_ = s.writeIndex(data)
	}
}

func (s *Store) extract(key domain.CacheKey, dst string) error {
	f, err := os.Open(s.objectPath(key)) //nolint:gosec // Path is derived from the validated key
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open cache entry"), "key", key.String())
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if err := unpack(f, dst); err != nil {
		return zerr.With(err, "key", key.String())
	}
	return nil
}

func (s *Store) objectPath(key domain.CacheKey) string {
	return filepath.Join(s.dir, objectsDir, key.String()+entryExt)
}
