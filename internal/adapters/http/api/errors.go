package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrListFailed    = errors.New("failed to load words")
	ErrBadMultipart  = errors.New("malformed multipart form")
	ErrMissingParams = errors.New("id and clientToken are required")
)
