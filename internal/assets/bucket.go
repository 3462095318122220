package assets

import (
	"sync"

	"github.com/conduit-lang/assets/internal/capability"
)

type entry struct {
	tag   capability.Tag
	value any
	disp  *disposable
}

// bucket holds every instance cached under one name, in insertion order.
type bucket struct {
	mu      sync.RWMutex
	name    string
	entries []entry
}

func (b *bucket) find(table *capability.Table, tag capability.Tag) (entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.entries {
		if table.Assignable(tag, e.tag) {
			return e, true
		}
	}
	return entry{}, false
}

func (b *bucket) add(e entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
}

// remove deletes the first entry matching tag.
func (b *bucket) remove(table *capability.Table, tag capability.Tag) (entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.entries {
		if table.Assignable(tag, e.tag) {
			b.entries = append(b.entries[:i:i], b.entries[i+1:]...)
			return e, true
		}
	}
	return entry{}, false
}

func (b *bucket) snapshot() []entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]entry(nil), b.entries...)
}

func (b *bucket) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
