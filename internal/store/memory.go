// internal/store/memory.go
//
// In-memory implementation of Backend.
// Used for ephemeral deployments, development, and tests.
//
// Characteristics:
//   - Stores string values keyed by name in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Expired entries are dropped lazily on access.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time // zero means never
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is a map-based Backend.
type Memory struct {
	mu      sync.RWMutex     // guards entries
	entries map[string]entry // keyed by full key
	now     func() time.Time
}

// NewMemory constructs an empty in-memory Backend.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

// Get returns the live value at key.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || e.expired(m.now()) {
		return "", ErrNotFound
	}
	return e.value, nil
}

// Set stores value at key, expiring after ttl when ttl > 0.
func (m *Memory) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

// Consume increments the window counter at key.
func (m *Memory) Consume(ctx context.Context, key string, limit int, window time.Duration) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		e = entry{value: "0", expires: now.Add(window)}
	}
	n, _ := strconv.Atoi(e.value)
	n++
	e.value = strconv.Itoa(n)
	m.entries[key] = e
	if n <= limit {
		return 0, nil
	}
	return e.expires.Sub(now), nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
