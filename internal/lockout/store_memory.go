package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count       int
	windowEnds  time.Time
	lockedUntil time.Time
}

// MemoryStore keeps lockout state in process memory. Suitable for a single
// node; multi-node deployments use the Redis store so all replicas see the
// same counts.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (m *MemoryStore) IncrFailures(_ context.Context, key string, window time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	entry := m.entries[key]
	if entry == nil || now.After(entry.windowEnds) {
		entry = &memoryEntry{windowEnds: now.Add(window)}
		if old := m.entries[key]; old != nil {
			entry.lockedUntil = old.lockedUntil
		}
		m.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (m *MemoryStore) Lock(_ context.Context, key string, lockFor time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entries[key]
	if entry == nil {
		entry = &memoryEntry{}
		m.entries[key] = entry
	}
	entry.lockedUntil = m.now().Add(lockFor)
	return nil
}

func (m *MemoryStore) IsLocked(_ context.Context, key string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.entries[key]
	if entry == nil {
		return false, 0, nil
	}
	remaining := entry.lockedUntil.Sub(m.now())
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
