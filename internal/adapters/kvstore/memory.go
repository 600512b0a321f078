package kvstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/gamerec/pkg/metrics"
)

// MemoryStore is a map-backed Store. Failures can be injected so callers'
// degraded paths can be exercised.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	failGet atomic.Bool
	failSet atomic.Bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// FailGets makes every Get fail with ErrStoreUnavailable while on.
func (m *MemoryStore) FailGets(on bool) { m.failGet.Store(on) }

// FailSets makes every Set and Delete fail with ErrStoreUnavailable while on.
func (m *MemoryStore) FailSets(on bool) { m.failSet.Store(on) }

// Get returns the value for key.
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	if m.failGet.Load() {
		metrics.RecordStoreError("get")
		return "", ErrStoreUnavailable
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if m.failSet.Load() {
		metrics.RecordStoreError("set")
		return ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.failSet.Load() {
		metrics.RecordStoreError("delete")
		return ErrStoreUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
