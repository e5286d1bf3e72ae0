// Package fs implements manifest fingerprinting over the local filesystem.
package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter hashes the dependency manifest files of a project.
type Fingerprinter struct{}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// ComputeFingerprint hashes every file matched by the given glob patterns,
// relative to root. The matched set is sorted and deduplicated before
// hashing, so the fingerprint depends only on file paths and contents,
// never on match order. Patterns may carry a "**/" prefix to match in any
// subdirectory.
func (f *Fingerprinter) ComputeFingerprint(root string, patterns []string) (domain.Fingerprint, error) {
	matches, err := f.resolve(root, patterns)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", zerr.With(domain.ErrNoManifests, "patterns", strings.Join(patterns, ", "))
	}

	hasher := xxhash.New()
	for _, rel := range matches {
		if err := f.hashFile(root, rel, hasher); err != nil {
			return "", err
		}
	}

	return domain.Fingerprint(fmt.Sprintf("%016x", hasher.Sum64())), nil
}

// resolve expands all patterns into a sorted, deduplicated set of paths
// relative to root.
func (f *Fingerprinter) resolve(root string, patterns []string) ([]string, error) {
	set := make(map[string]bool)

	for _, pattern := range patterns {
		matched, err := f.resolvePattern(root, pattern)
		if err != nil {
			return nil, err
		}
		for _, rel := range matched {
			set[filepath.ToSlash(rel)] = true
		}
	}

	matches := make([]string, 0, len(set))
	for rel := range set {
		matches = append(matches, rel)
	}
	sort.Strings(matches)
	return matches, nil
}

func (f *Fingerprinter) resolvePattern(root, pattern string) ([]string, error) {
	if tail, ok := strings.CutPrefix(pattern, "**/"); ok {
		return f.walkMatch(root, tail)
	}

	abs, err := filepath.Glob(filepath.Join(root, pattern))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "bad manifest pattern"), "pattern", pattern)
	}

	rels := make([]string, 0, len(abs))
	for _, m := range abs {
		rel, relErr := filepath.Rel(root, m)
		if relErr != nil {
			return nil, zerr.Wrap(relErr, "failed to relativize manifest path")
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// walkMatch matches tail against the base name of every file under root.
func (f *Fingerprinter) walkMatch(root, tail string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, matchErr := filepath.Match(tail, d.Name())
		if matchErr != nil {
			return zerr.With(zerr.Wrap(matchErr, "bad manifest pattern"), "pattern", "**/"+tail)
		}
		if ok {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			rels = append(rels, rel)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to walk project tree")
	}
	return rels, nil
}

// hashFile writes the file's slash-normalized relative path and content
// digest into the main hasher.
func (f *Fingerprinter) hashFile(root, rel string, mainHasher *xxhash.Digest) error {
	_, _ = mainHasher.WriteString(filepath.ToSlash(rel))
	_, _ = mainHasher.Write([]byte{0}) // Separator

	hash, err := f.hashContent(filepath.Join(root, rel))
	if err != nil {
		return err
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}

// hashContent computes the XXHash of a file's content.
func (f *Fingerprinter) hashContent(path string) (uint64, error) {
	file, err := os.Open(path) //nolint:gosec // Path is resolved from user config
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open manifest"), "path", path)
	}
	defer file.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash manifest content"), "path", path)
	}

	return hasher.Sum64(), nil
}
