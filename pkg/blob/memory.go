package blob

import (
	"context"
	"sync"
)

// MemoryStore keeps artifacts in process memory. Used in tests and as the
// fallback when no bucket is configured; uploads do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), body...)
	return "memory://" + key, nil
}

func (s *MemoryStore) PublicURL(ref string) string { return ref }

// Get returns a stored artifact, primarily for tests.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[key]
	return body, ok
}
