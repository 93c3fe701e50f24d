package store

import (
	"sort"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu          sync.Mutex
	defs        map[string]Definition
	values      map[string]string
	history     []Update
	subscribers map[string][]func(string)
	closed      bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		defs:        make(map[string]Definition),
		values:      make(map[string]string),
		subscribers: make(map[string][]func(string)),
	}
}

// Declare records def unless key is already declared
func (m *Memory) Declare(def Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.defs[def.Key]; !exists {
		m.defs[def.Key] = def
	}
	return nil
}

// SetState stores value and appends it to the history
func (m *Memory) SetState(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.history = append(m.history, Update{Key: key, Value: value})
	return nil
}

// Subscribe registers fn for external writes to key
func (m *Memory) Subscribe(key string, fn func(value string)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[key] = append(m.subscribers[key], fn)
	return nil
}

// Write simulates an external write to key: subscribers are called
// synchronously and the stored value is left unchanged.
func (m *Memory) Write(key, value string) {
	m.mu.Lock()
	subs := append([]func(string){}, m.subscribers[key]...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Close marks the store closed
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Get returns the current value of key
func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Definition returns the declared definition of key
func (m *Memory) Definition(key string) (Definition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.defs[key]
	return d, ok
}

// History returns every SetState in call order
func (m *Memory) History() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Update(nil), m.history...)
}

// Count returns how many times key was set to value
func (m *Memory) Count(key, value string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.history {
		if u.Key == key && u.Value == value {
			n++
		}
	}
	return n
}

// Keys returns the keys holding a value, sorted
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Closed reports whether Close was called
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
