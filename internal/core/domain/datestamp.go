package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// dateStampLayout is the single formatting routine for date stamps. Every
// platform formats through this layout so the stamp is byte-identical
// regardless of host OS.
const dateStampLayout = "2006-01-02"

// DateStamp is the calendar date of one pipeline run, formatted YYYY-MM-DD
// in the runner's local timezone. It is computed exactly once at run start
// and threaded explicitly into every key derivation, so a run spanning
// midnight still produces consistent keys across all cache classes.
type DateStamp string

// NewDateStamp formats t as a date stamp.
func NewDateStamp(t time.Time) DateStamp {
	return DateStamp(t.Format(dateStampLayout))
}

// ParseDateStamp validates that s is a well-formed date stamp.
func ParseDateStamp(s string) (DateStamp, error) {
	if _, err := time.Parse(dateStampLayout, s); err != nil {
		return "", zerr.With(ErrInvalidDateStamp, "value", s)
	}
	return DateStamp(s), nil
}

// String returns the YYYY-MM-DD form.
func (d DateStamp) String() string {
	return string(d)
}
