package ring

import "errors"

// ErrRingFull signals that every layer up to the configured maximum is
// occupied. This is a terminal, user-facing condition, not a retryable
// failure.
var ErrRingFull = errors.New("ring structure is full")
