package capability

// Descriptor names a codec and lists the value types it declares.
type Descriptor interface {
	// Name is a human readable label, e.g. "XML Document".
	Name() string

	// Types returns the declared tags.
	Types() []Tag

	// Supports reports whether tag is in the declared set.
	Supports(tag Tag) bool
}

// Capable is implemented by anything that carries a Descriptor.
type Capable interface {
	Capability() Descriptor
}

type descriptor struct {
	name  string
	types []Tag
	set   map[Tag]struct{}
}

// NewDescriptor returns an immutable descriptor. Duplicate and zero tags are
// dropped; declaration order is otherwise kept.
func NewDescriptor(name string, tags ...Tag) Descriptor {
	d := &descriptor{
		name: name,
		set:  make(map[Tag]struct{}, len(tags)),
	}
	for _, tag := range tags {
		if tag.IsZero() {
			continue
		}
		if _, ok := d.set[tag]; ok {
			continue
		}
		d.set[tag] = struct{}{}
		d.types = append(d.types, tag)
	}
	return d
}

func (d *descriptor) Name() string { return d.name }

func (d *descriptor) Types() []Tag {
	out := make([]Tag, len(d.types))
	copy(out, d.types)
	return out
}

func (d *descriptor) Supports(tag Tag) bool {
	_, ok := d.set[tag]
	return ok
}
