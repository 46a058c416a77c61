package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps records in a process-local map. It does not survive
// restarts and is meant for tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Write stores a copy of data under key
func (s *MemoryStore) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.records[key] = buf
	s.mu.Unlock()
	return nil
}

// Read returns a copy of the record under key
func (s *MemoryStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Delete removes the record under key. Missing keys are not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
