package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
}

// MemStore keeps blobs in process memory. Intended for tests.
type MemStore struct {
	mu   sync.RWMutex
	objs map[string]memObject
}

// NewMemStore returns an empty in-memory blob store.
func NewMemStore() *MemStore {
	return &MemStore{objs: make(map[string]memObject)}
}

// Upload stores the blob under key.
func (s *MemStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[key] = memObject{data: b, contentType: contentType}
	return nil
}

// URL resolves a memory:// pseudo-URL for the blob.
func (s *MemStore) URL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objs[key]; !ok {
		return "", ErrNotFound
	}
	return "memory://" + key, nil
}

// Delete removes the blob.
func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objs, key)
	return nil
}

// Open returns the blob content for test assertions.
func (s *MemStore) Open(key string) (io.Reader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objs[key]
	if !ok {
		return nil, false
	}
	return bytes.NewReader(obj.data), true
}
