// Package storage persists course snapshots in a key-value blob store.
// Backends: in-memory, SQLite, PostgreSQL and Redis.
package storage

import (
	"context"
	"sync"
)

// Keys under which the process-wide snapshots are stored.
const (
	KeyCourse   = "courseStructure"
	KeyProgress = "learningProgress"
)

// BlobStore is a string key-value store. Get reports whether the key exists.
type BlobStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStore is an in-memory BlobStore, used in tests and when no backend is configured.
type MemoryStore struct {
	blobs map[string]string
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
