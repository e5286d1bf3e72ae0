package domain

// RestoreOutcome describes how a cache lookup for one class resolved.
type RestoreOutcome string

const (
	// RestoreExact indicates the exact key matched (same manifest, same day).
	RestoreExact RestoreOutcome = "exact"
	// RestorePrefix indicates a restore-chain prefix matched an entry from a
	// prior day with the same fingerprint.
	RestorePrefix RestoreOutcome = "prefix"
	// RestoreMiss indicates no stored entry matched at all.
	RestoreMiss RestoreOutcome = "miss"
)

// RestoreResult is the outcome of one class's cache lookup.
type RestoreResult struct {
	Outcome RestoreOutcome
	// MatchedKey is the key of the entry that was restored, empty on a miss.
	MatchedKey CacheKey
}

// ShouldSave reports whether a fresh entry must be persisted under the exact
// key after the run. Only an exact hit suppresses the save: a prefix hit
// still writes a new entry so the next run on the same day gets an exact
// match, and a miss obviously does.
func (r RestoreResult) ShouldSave() bool {
	return r.Outcome != RestoreExact
}
