// Package memory provides an in-memory archive store for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// BlobStore keeps archived objects in a map.
type BlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// New returns an empty in-memory archive store.
func New() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

// PutObject stores a copy of data under path and returns a mem:// URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, data []byte) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = buf
	return fmt.Sprintf("mem://%s", path), nil
}

// Object returns the stored bytes for path, if any.
func (s *BlobStore) Object(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	return data, ok
}

// Len reports how many objects are stored.
func (s *BlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
