package service

import "errors"

// Sentinel kinds for contribution conflicts and authorization failures.
// Validation errors are typed in the word package; ring-full surfaces as
// ring.ErrRingFull and unknown ids as repository.ErrNotFound.
var (
	// ErrDuplicateTerm rejects a term already on the ring (case-insensitive).
	ErrDuplicateTerm = errors.New("word already exists")

	// ErrVisitorHasWord rejects a second contribution from the same
	// browser token when single-word-per-visitor is enforced.
	ErrVisitorHasWord = errors.New("visitor already contributed a word")

	// ErrNotOwner rejects a delete attempted with the wrong owner token.
	ErrNotOwner = errors.New("entry belongs to a different visitor")

	// ErrAvatarTooLarge rejects avatar uploads over the configured limit.
	ErrAvatarTooLarge = errors.New("avatar exceeds the size limit")
)
