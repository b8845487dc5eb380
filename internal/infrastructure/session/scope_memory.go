package session

import (
	"context"
	"sync"
)

// MemoryScope is the ephemeral storage scope: records live only as long as
// the process, the server-side analog of tab-scoped storage.
type MemoryScope struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryScope() *MemoryScope {
	return &MemoryScope{records: make(map[string][]byte)}
}

func (s *MemoryScope) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.records[key] = stored
	return nil
}

func (s *MemoryScope) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	return value, ok, nil
}

func (s *MemoryScope) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
