package domain

import "go.trai.ch/zerr"

// CacheClass names one independent category of cached data (for example the
// package registry, the package index, or the compiled build output). Each
// class owns its own storage path and its own key namespace; classes never
// share entries.
type CacheClass struct {
	// Name is the class prefix used in key derivation. When Scope is set it
	// is prepended as "<scope>-<name>"; nothing injects an OS scope
	// implicitly (the source pipelines share keys across platforms).
	Name string
	// Path is the directory this class persists and restores.
	Path string
	// Scope is an optional explicit namespace prefix.
	Scope string
}

// Prefix returns the class prefix used in key derivation.
func (c CacheClass) Prefix() string {
	if c.Scope != "" {
		return c.Scope + "-" + c.Name
	}
	return c.Name
}

// CacheKey is the exact-match lookup key for one class, one fingerprint and
// one date: "<class>-<fingerprint>-<YYYY-MM-DD>".
type CacheKey string

// String returns the key text.
func (k CacheKey) String() string {
	return string(k)
}

// RestoreKeyChain is an ordered sequence of key prefixes used for fallback
// matching when no exact CacheKey match exists. Entries are strictly less
// specific than the exact key, most specific first.
type RestoreKeyChain []string

// KeyPlan is the full lookup-then-save plan for one cache class.
type KeyPlan struct {
	Class CacheClass
	// ExactKey is "<class>-<fingerprint>-<date>".
	ExactKey CacheKey
	// RestoreKeys holds the date-free fallback prefixes.
	RestoreKeys RestoreKeyChain
}

// PlanKeys derives the exact cache key and restore-key chain for one class.
// It is a pure string composition: for fixed inputs it always returns the
// same plan, and it only fails on violated input constraints.
//
// The restore chain carries a single date-free entry, so a lookup prefers
// the newest same-day cache and falls back to the most recent entry from
// any prior day with the same dependency fingerprint.
func PlanKeys(class CacheClass, fp Fingerprint, stamp DateStamp) (KeyPlan, error) {
	if fp.IsZero() {
		return KeyPlan{}, zerr.With(ErrEmptyFingerprint, "class", class.Name)
	}
	if _, err := ParseDateStamp(stamp.String()); err != nil {
		return KeyPlan{}, err
	}

	prefix := class.Prefix() + "-" + fp.String()
	return KeyPlan{
		Class:       class,
		ExactKey:    CacheKey(prefix + "-" + stamp.String()),
		RestoreKeys: RestoreKeyChain{prefix},
	}, nil
}
