// Package domain contains the core domain models for cache key planning.
package domain

// Fingerprint is a deterministic hash over the contents of the dependency
// manifest files. Byte-identical manifest sets always produce the same
// fingerprint; any change to any matched file changes it.
//
// The canonical representation is the 16 hex character form of an XXH64
// digest, but the type makes no assumption beyond non-emptiness.
type Fingerprint string

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string {
	return string(f)
}

// IsZero reports whether the fingerprint is unset.
func (f Fingerprint) IsZero() bool {
	return f == ""
}
