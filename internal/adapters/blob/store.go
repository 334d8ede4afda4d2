// Package blob defines the avatar blob store contract and its memory,
// filesystem, and S3 implementations.
package blob

import (
	"context"
	"errors"
	"io"
)

// Sentinel errors shared by all blob store implementations.
var (
	// ErrNotFound signals an unknown blob key.
	ErrNotFound = errors.New("blob not found")
)

// Store holds uploaded avatar images. Keys are opaque paths chosen by the
// caller; URL resolution is driver-specific.
type Store interface {
	// Upload stores the blob under key, overwriting any previous content.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error

	// URL resolves a display URL for the blob.
	URL(ctx context.Context, key string) (string, error)

	// Delete removes the blob; deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error
}
