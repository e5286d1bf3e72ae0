package domain

import "go.trai.ch/zerr"

var (
	// ErrNoManifests is returned when no manifest pattern matches any file.
	ErrNoManifests = zerr.New("no manifest files matched")

	// ErrEmptyFingerprint is returned when a key plan is requested for an empty fingerprint.
	ErrEmptyFingerprint = zerr.New("fingerprint is empty")

	// ErrInvalidDateStamp is returned when a date stamp does not parse as YYYY-MM-DD.
	ErrInvalidDateStamp = zerr.New("invalid date stamp")

	// ErrNoClasses is returned when a pipeline declares no cache classes.
	ErrNoClasses = zerr.New("no cache classes declared")

	// ErrDuplicateClass is returned when two cache classes share a name.
	ErrDuplicateClass = zerr.New("duplicate cache class")

	// ErrStepFailed is returned when a pipeline step exits non-zero.
	ErrStepFailed = zerr.New("step failed")
)
