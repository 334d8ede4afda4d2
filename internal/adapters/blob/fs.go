package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore writes blobs under a root directory. URLs are composed from a
// base URL under which the directory is served (see the /avatars/ route).
type FSStore struct {
	root    string
	baseURL string
}

// NewFSStore creates the root directory if needed and returns the store.
func NewFSStore(root, baseURL string) (*FSStore, error) {
	if root == "" {
		return nil, fmt.Errorf("fs blob store: root directory required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs blob store: %w", err)
	}
	return &FSStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root returns the directory blobs are written to.
func (s *FSStore) Root() string { return s.root }

// Upload writes the blob to disk, creating parent directories as needed.
func (s *FSStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("fs blob store: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fs blob store: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("fs blob store: %w", err)
	}
	return nil
}

// URL resolves the public URL for the blob.
func (s *FSStore) URL(_ context.Context, key string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the blob file; missing files are ignored.
func (s *FSStore) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs blob store: %w", err)
	}
	return nil
}

// resolve maps a key to a path inside the root, rejecting traversal.
func (s *FSStore) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("fs blob store: empty key")
	}
	return filepath.Join(s.root, clean), nil
}
