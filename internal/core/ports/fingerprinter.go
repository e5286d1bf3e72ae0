// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/warm/internal/core/domain"

// Fingerprinter computes the manifest fingerprint for a project.
//
//go:generate go run go.uber.org/mock/mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// ComputeFingerprint hashes every file under root matched by the given
	// glob patterns. Identical file contents always yield the same
	// fingerprint. It returns domain.ErrNoManifests when nothing matches
	// and an error when any matched file is unreadable.
	ComputeFingerprint(root string, patterns []string) (domain.Fingerprint, error)
}
