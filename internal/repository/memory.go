package repository

import (
	"context"
	"sync"
)

// MemoryStateRepository keeps blobs in process memory. It is used when
// MongoDB is disabled; state then lives as long as the process.
type MemoryStateRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStateRepository creates an empty in-memory repository.
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{blobs: make(map[string][]byte)}
}

// Load returns a copy of the blob stored under key.
func (r *MemoryStateRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.blobs[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Save stores a copy of data under key.
func (r *MemoryStateRepository) Save(_ context.Context, key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	r.mu.Lock()
	r.blobs[key] = buf
	r.mu.Unlock()
	return nil
}

// Delete removes key.
func (r *MemoryStateRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.blobs, key)
	r.mu.Unlock()
	return nil
}
