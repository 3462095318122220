package archive

import (
	"fmt"
	"sort"
	"sync"
)

// Memory is an Archive kept in a map. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Put stores data under name, replacing any existing entry.
func (m *Memory) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[name] = append([]byte(nil), data...)
}

// Bytes returns a copy of the entry's content.
func (m *Memory) Bytes(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entries[name]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (m *Memory) EntryNames() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Open(name string) (Entry, error) {
	data, ok := m.Bytes(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return newBufferedEntry(name, data, m.committer(name)), nil
}

func (m *Memory) Create(name string) (Entry, error) {
	m.Put(name, nil)
	return newBufferedEntry(name, nil, m.committer(name)), nil
}

func (m *Memory) committer(name string) func([]byte) error {
	return func(data []byte) error {
		m.Put(name, data)
		return nil
	}
}
