package capability

import (
	"sort"
)

// Registry indexes codecs by the tags they declare.
//
// Add and Remove cost O(k) in the number of tags (plus supertypes) a codec
// declares; Resolve and Supports are single map lookups. The registry is
// meant to be populated during setup: concurrent Add/Remove are not safe,
// concurrent Resolve against a stable registry is.
//
// C must have a comparable dynamic type (pointer codecs are the norm).
type Registry[C interface {
	comparable
	Capable
}] struct {
	name    string
	table   *Table
	codecs  []C
	members map[C]struct{}
	links   map[Tag][]C
}

// New creates an empty registry named name. A nil table restricts matching
// to exact tags and Any.
func New[C interface {
	comparable
	Capable
}](name string, table *Table) *Registry[C] {
	return &Registry[C]{
		name:    name,
		table:   table,
		members: make(map[C]struct{}),
		links:   make(map[Tag][]C),
	}
}

// Add registers c under every declared tag and its supertypes.
// It returns false if c was already registered.
func (r *Registry[C]) Add(c C) bool {
	if _, ok := r.members[c]; ok {
		return false
	}
	r.members[c] = struct{}{}
	r.codecs = append(r.codecs, c)

	for _, tag := range r.targets(c) {
		r.links[tag] = append(r.links[tag], c)
	}
	return true
}

// Remove unregisters c. A tag stops being supported once no remaining codec
// links to it. It returns false if c was not registered.
func (r *Registry[C]) Remove(c C) bool {
	if _, ok := r.members[c]; !ok {
		return false
	}
	delete(r.members, c)
	r.codecs = without(r.codecs, c)

	for _, tag := range r.targets(c) {
		remaining := without(r.links[tag], c)
		if len(remaining) == 0 {
			delete(r.links, tag)
			continue
		}
		r.links[tag] = remaining
	}
	return true
}

// Resolve returns the first registered codec, by insertion order, whose
// declared tags contain tag or a subtype of it.
func (r *Registry[C]) Resolve(tag Tag) (C, bool) {
	list := r.links[tag]
	if len(list) == 0 {
		var zero C
		return zero, false
	}
	return list[0], true
}

// Supports reports whether any registered codec can serve tag.
func (r *Registry[C]) Supports(tag Tag) bool {
	_, ok := r.links[tag]
	return ok
}

// Contains reports whether c is registered.
func (r *Registry[C]) Contains(c C) bool {
	_, ok := r.members[c]
	return ok
}

// Len returns the number of registered codecs.
func (r *Registry[C]) Len() int {
	return len(r.codecs)
}

// Codecs returns the registered codecs in insertion order.
func (r *Registry[C]) Codecs() []C {
	out := make([]C, len(r.codecs))
	copy(out, r.codecs)
	return out
}

// Clear removes every codec.
func (r *Registry[C]) Clear() {
	r.codecs = nil
	r.members = make(map[C]struct{})
	r.links = make(map[Tag][]C)
}

// Descriptor returns a live view of the union of all registered codecs.
func (r *Registry[C]) Descriptor() Descriptor {
	return registryDescriptor[C]{r: r}
}

// targets lists every tag c is indexed under, without duplicates.
func (r *Registry[C]) targets(c C) []Tag {
	seen := make(map[Tag]struct{})
	var out []Tag
	add := func(tag Tag) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	for _, tag := range c.Capability().Types() {
		add(tag)
		for _, super := range r.table.Supertypes(tag) {
			add(super)
		}
	}
	return out
}

func without[C comparable](list []C, c C) []C {
	out := list[:0:0]
	for _, item := range list {
		if item != c {
			out = append(out, item)
		}
	}
	return out
}

type registryDescriptor[C interface {
	comparable
	Capable
}] struct {
	r *Registry[C]
}

func (d registryDescriptor[C]) Name() string { return d.r.name }

// Types returns every supported tag sorted by name, supertypes included.
func (d registryDescriptor[C]) Types() []Tag {
	out := make([]Tag, 0, len(d.r.links))
	for tag := range d.r.links {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (d registryDescriptor[C]) Supports(tag Tag) bool { return d.r.Supports(tag) }
