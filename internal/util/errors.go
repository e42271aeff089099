package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in protocol file")

	ErrExtractionAmbiguous = errors.New("extraction ambiguous: multiple candidates without a dominant one")
	ErrNoCandidate         = errors.New("no extraction candidate found")
	ErrMatchConflict       = errors.New("match blocked: shared word is not unique across roster")
	ErrFallbackUnavailable = errors.New("llm fallback unavailable")

	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrSessionBusy       = errors.New("session is in use by another request")
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrUnresolvedStaff   = errors.New("unresolved staff candidates remain")
	ErrCommitConflict    = errors.New("commit conflict: record changed since session started")
	ErrNothingToCommit   = errors.New("pending-changes buffer is empty")
)
