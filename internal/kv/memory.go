package kv

import (
	"context"
	"sync"
)

type memEntry struct {
	value   []byte
	version int64
}

// Memory is an in-memory Store used when no durable backend is available.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	// seq keeps versions monotonic across delete/recreate.
	seq int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry)}
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, 0, nil
	}
	return clone(e.value), e.version, nil
}

// Set implements Store.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(key, value)
	return nil
}

// CompareAndSwap implements Store.
func (m *Memory) CompareAndSwap(ctx context.Context, key string, version int64, value []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries[key].version != version {
		return false, nil
	}
	m.put(key, value)
	return true, nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// put must be called with mu held.
func (m *Memory) put(key string, value []byte) {
	m.seq++
	m.entries[key] = memEntry{value: clone(value), version: m.seq}
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
