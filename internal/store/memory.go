package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and single-process runs.
// Watch callbacks fire synchronously on the writing goroutine.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	watchers map[string][]*memWatcher
}

type memWatcher struct {
	fn     func()
	active bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string][]byte),
		watchers: make(map[string][]*memWatcher),
	}
}

// Get returns the value for key and whether the key exists.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set writes value under key and notifies watchers.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[key] = stored
	m.mu.Unlock()

	m.notify(key)
	return nil
}

// Delete removes key and notifies watchers.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.values[key]
	delete(m.values, key)
	m.mu.Unlock()

	if existed {
		m.notify(key)
	}
	return nil
}

// Watch registers fn for changes to key. The returned function cancels the watch.
func (m *MemoryStore) Watch(key string, fn func()) func() {
	w := &memWatcher{fn: fn, active: true}

	m.mu.Lock()
	m.watchers[key] = append(m.watchers[key], w)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		w.active = false
		m.mu.Unlock()
	}
}

// notify runs watcher callbacks outside the lock so a callback may call back
// into the store.
func (m *MemoryStore) notify(key string) {
	m.mu.Lock()
	watchers := make([]*memWatcher, 0, len(m.watchers[key]))
	for _, w := range m.watchers[key] {
		if w.active {
			watchers = append(watchers, w)
		}
	}
	m.mu.Unlock()

	for _, w := range watchers {
		w.fn()
	}
}
