package source

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// LinkMap maps logical asset names to physical archive entry names and back.
// The logical name of an entry is its name with the extension removed.
type LinkMap struct {
	mu      sync.RWMutex
	links   map[string]string
	reverse map[string]string
}

// NewLinkMap builds links for every physical entry name. When two entries
// share a logical name the first one wins and the others are returned as
// shadowed.
func NewLinkMap(physical []string) (*LinkMap, []string) {
	m := &LinkMap{
		links:   make(map[string]string, len(physical)),
		reverse: make(map[string]string, len(physical)),
	}

	var shadowed []string
	for _, p := range physical {
		logical := LogicalName(p)
		if _, exists := m.links[logical]; exists {
			shadowed = append(shadowed, p)
			continue
		}
		m.links[logical] = p
		m.reverse[p] = logical
	}
	return m, shadowed
}

// LogicalName strips the extension from the last path element.
func LogicalName(physical string) string {
	return strings.TrimSuffix(physical, path.Ext(physical))
}

// Resolve returns the physical entry linked to logical.
func (m *LinkMap) Resolve(logical string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.links[logical]
	return p, ok
}

// Logical returns the logical name linked to physical.
func (m *LinkMap) Logical(physical string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.reverse[physical]
	return l, ok
}

// Set links logical to physical, replacing any previous link of either.
func (m *LinkMap) Set(logical, physical string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.links[logical]; ok {
		delete(m.reverse, old)
	}
	if old, ok := m.reverse[physical]; ok {
		delete(m.links, old)
	}
	m.links[logical] = physical
	m.reverse[physical] = logical
}

// Names returns every logical name, sorted.
func (m *LinkMap) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.links))
	for name := range m.links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of links.
func (m *LinkMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links)
}
